package game

import "github.com/Ko-stant/dungeon-builder/internal/events"

// Health tracks hit points for a player or enemy.
type Health struct {
	Owner      string
	Damageable bool
	OnChange   func(events.HealthChanged)

	starting int
	current  int
}

func NewHealth(owner string, starting int) *Health {
	h := &Health{Owner: owner, Damageable: true}
	h.SetStarting(starting)
	return h
}

func (h *Health) SetStarting(starting int) {
	h.starting = starting
	h.current = starting
}

// TakeDamage is ignored while the owner is not damageable.
func (h *Health) TakeDamage(amount int) {
	if !h.Damageable {
		return
	}
	h.current -= amount
	h.notify(amount)
}

func (h *Health) Starting() int { return h.starting }
func (h *Health) Current() int  { return h.current }
func (h *Health) Dead() bool    { return h.current <= 0 }

// Percent is current over starting health, 0 when starting health is unset.
func (h *Health) Percent() float64 {
	if h.starting <= 0 {
		return 0
	}
	return float64(h.current) / float64(h.starting)
}

func (h *Health) notify(damage int) {
	if h.OnChange == nil {
		return
	}
	h.OnChange(events.HealthChanged{
		Owner:   h.Owner,
		Current: h.current,
		Percent: h.Percent(),
		Damage:  damage,
	})
}
