package combat

// CombatantView is a read-only picture of one combatant for status displays.
type CombatantView struct {
	Side       int           `json:"side"`
	Index      int           `json:"index"`
	Name       string        `json:"name"`
	HP         int           `json:"hp"`
	MaxHP      int           `json:"max_hp"`
	ArmorClass int           `json:"ac"`
	Alive      bool          `json:"alive"`
	Attacks    []AttackState `json:"attacks"`
	// Ignores holds the names of the factions this combatant will not target.
	Ignores []string `json:"ignores,omitempty"`
}

// FactionView is a read-only picture of one roster.
type FactionView struct {
	Index   int             `json:"index"`
	Name    string          `json:"name"`
	Alive   bool            `json:"alive"`
	Members []CombatantView `json:"members"`
}

// BattleView is the status of a whole battle.
type BattleView struct {
	ID       string        `json:"id"`
	Round    int           `json:"round"`
	Outcome  Outcome       `json:"outcome"`
	Factions []FactionView `json:"factions"`
}

// ViewOf builds the status of sides without a battle id or round.
func ViewOf(sides []*Roster) BattleView {
	v := BattleView{Outcome: EvaluateOutcome(sides), Factions: make([]FactionView, len(sides))}
	for i, r := range sides {
		fv := FactionView{Index: i, Name: r.Name, Alive: r.Alive(), Members: make([]CombatantView, len(r.Members))}
		for j, c := range r.Members {
			st := c.State()
			cv := CombatantView{
				Side:       i,
				Index:      j,
				Name:       st.Name,
				HP:         st.HP,
				MaxHP:      st.MaxHP,
				ArmorClass: st.ArmorClass,
				Alive:      st.Alive,
				Attacks:    st.Attacks,
			}
			for _, s := range st.IgnoreSides {
				if s >= 0 && s < len(sides) {
					cv.Ignores = append(cv.Ignores, sides[s].Name)
				}
			}
			fv.Members[j] = cv
		}
		v.Factions[i] = fv
	}
	return v
}
