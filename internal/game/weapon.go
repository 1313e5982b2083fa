package game

import "github.com/Ko-stant/dungeon-builder/internal/geometry"

// WeaponDetails is the static description of a weapon. Times are seconds.
type WeaponDetails struct {
	Name                 string  `yaml:"name" json:"name"`
	Damage               int     `yaml:"damage" json:"damage"`
	FireRate             float64 `yaml:"fireRate" json:"fireRate"`
	ReloadTime           float64 `yaml:"reloadTime" json:"reloadTime"`
	ClipCapacity         int     `yaml:"clipCapacity" json:"clipCapacity"`
	AmmoCapacity         int     `yaml:"ammoCapacity" json:"ammoCapacity"`
	InfiniteAmmo         bool    `yaml:"infiniteAmmo" json:"infiniteAmmo"`
	InfiniteClipCapacity bool    `yaml:"infiniteClipCapacity" json:"infiniteClipCapacity"`
}

// Projectile is a pooled shot.
type Projectile struct {
	Active bool
	Origin geometry.Vec2
	Damage int
}

func NewProjectilePool(key string, size int) (*Pool[*Projectile], error) {
	return NewPool(key, size,
		func(int) *Projectile { return &Projectile{} },
		func(p *Projectile) { *p = Projectile{} })
}

type Weapon struct {
	Details       WeaponDetails
	RemainingAmmo int
	ClipRemaining int

	reloading   bool
	reloadTimer float64
	cooldown    float64
	projectiles *Pool[*Projectile]
}

// NewWeapon returns a fully loaded weapon. projectiles may be nil, in which
// case Fire still consumes ammo but returns no projectile.
func NewWeapon(details WeaponDetails, projectiles *Pool[*Projectile]) *Weapon {
	return &Weapon{
		Details:       details,
		RemainingAmmo: details.AmmoCapacity,
		ClipRemaining: details.ClipCapacity,
		projectiles:   projectiles,
	}
}

func (w *Weapon) Reloading() bool { return w.reloading }

func (w *Weapon) ReadyToFire() bool {
	if w.RemainingAmmo <= 0 && !w.Details.InfiniteAmmo {
		return false
	}
	if w.reloading {
		return false
	}
	if w.cooldown > 0 {
		return false
	}
	if !w.Details.InfiniteClipCapacity && w.ClipRemaining <= 0 {
		return false
	}
	return true
}

// Fire shoots once if the weapon is ready and restarts the fire-rate
// cooldown.
func (w *Weapon) Fire(origin geometry.Vec2) (*Projectile, bool) {
	if !w.ReadyToFire() {
		return nil, false
	}

	var p *Projectile
	if w.projectiles != nil {
		p = w.projectiles.Get()
		p.Active = true
		p.Origin = origin
		p.Damage = w.Details.Damage
	}

	if !w.Details.InfiniteClipCapacity {
		w.ClipRemaining--
		w.RemainingAmmo--
	}
	w.cooldown = w.Details.FireRate
	return p, true
}

// Reload starts the reload timer. It reports false when the clip is full,
// a reload is already running, or there is no spare ammo.
func (w *Weapon) Reload() bool {
	if w.reloading || w.Details.InfiniteClipCapacity {
		return false
	}
	if w.ClipRemaining >= w.Details.ClipCapacity {
		return false
	}
	if !w.Details.InfiniteAmmo && w.RemainingAmmo <= w.ClipRemaining {
		return false
	}
	w.reloading = true
	w.reloadTimer = w.Details.ReloadTime
	if w.reloadTimer <= 0 {
		w.finishReload()
	}
	return true
}

// Tick advances the cooldown and reload timers by dt seconds.
func (w *Weapon) Tick(dt float64) {
	w.cooldown -= dt
	if !w.reloading {
		return
	}
	w.reloadTimer -= dt
	if w.reloadTimer <= 0 {
		w.finishReload()
	}
}

func (w *Weapon) finishReload() {
	switch {
	case w.Details.InfiniteAmmo:
		w.ClipRemaining = w.Details.ClipCapacity
	case w.RemainingAmmo >= w.Details.ClipCapacity:
		w.ClipRemaining = w.Details.ClipCapacity
	default:
		w.ClipRemaining = w.RemainingAmmo
	}
	w.reloading = false
	w.reloadTimer = 0
}
