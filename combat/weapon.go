// Package combat implements the shooter mode's ballistics: weapon
// definitions, fire gating with spread and recoil accumulators, aim point
// resolution against level geometry and the pooled projectile tracers.
package combat

// WeaponKind identifies a weapon archetype.
type WeaponKind uint8

const (
	Pistol WeaponKind = iota
	Rifle
	Shotgun
	Sniper
)

// Weapon is a static weapon definition. Spread angles are radians.
type Weapon struct {
	Kind WeaponKind
	Name string

	FireRate      float32 // shots per second
	Pellets       int     // rays per trigger pull
	MagSize       int
	ReloadSeconds float32

	// Spread model: the accumulator grows per shot, is capped, and decays
	// while not firing.
	BaseSpread    float32
	SpreadPerShot float32
	SpreadCap     float32
	SpreadDecay   float32 // per second

	// Visual recoil pitch kick, independent from spread.
	RecoilPerShot  float32
	RecoilCap      float32
	RecoilRecovery float32 // per second

	Damage float32
}

// Arsenal is the weapon table, indexed by kind.
var Arsenal = map[WeaponKind]Weapon{
	Pistol: {
		Kind: Pistol, Name: "pistol",
		FireRate: 4, Pellets: 1, MagSize: 12, ReloadSeconds: 1.2,
		BaseSpread: 0.012, SpreadPerShot: 0.008, SpreadCap: 0.05, SpreadDecay: 0.08,
		RecoilPerShot: 0.02, RecoilCap: 0.1, RecoilRecovery: 0.25,
		Damage: 25,
	},
	Rifle: {
		Kind: Rifle, Name: "rifle",
		FireRate: 10, Pellets: 1, MagSize: 30, ReloadSeconds: 1.8,
		BaseSpread: 0.015, SpreadPerShot: 0.01, SpreadCap: 0.08, SpreadDecay: 0.12,
		RecoilPerShot: 0.015, RecoilCap: 0.12, RecoilRecovery: 0.3,
		Damage: 18,
	},
	Shotgun: {
		Kind: Shotgun, Name: "shotgun",
		FireRate: 1.2, Pellets: 8, MagSize: 6, ReloadSeconds: 2.4,
		BaseSpread: 0.06, SpreadPerShot: 0.01, SpreadCap: 0.09, SpreadDecay: 0.1,
		RecoilPerShot: 0.06, RecoilCap: 0.15, RecoilRecovery: 0.35,
		Damage: 12,
	},
	Sniper: {
		Kind: Sniper, Name: "sniper",
		FireRate: 0.8, Pellets: 1, MagSize: 5, ReloadSeconds: 2.8,
		BaseSpread: 0.03, SpreadPerShot: 0.02, SpreadCap: 0.06, SpreadDecay: 0.15,
		RecoilPerShot: 0.09, RecoilCap: 0.2, RecoilRecovery: 0.4,
		Damage: 90,
	},
}

// Spread multipliers and additions applied on top of the weapon base.
const (
	aimSpreadMult      float32 = 0.4
	sitSpreadMult      float32 = 0.75
	crawlSpreadMult    float32 = 0.5
	movementSpreadRate float32 = 0.004 // added spread per unit/s of speed
)
