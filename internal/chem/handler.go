package chem

import (
	"encoding/json"
	"net/http"
)

// OxideInfo is one row of the reference listing.
type OxideInfo struct {
	Oxide        string  `json:"oxide"`
	MolarMass    float64 `json:"molar_mass"`
	Cation       string  `json:"cation"`
	Cations      int     `json:"cations"`
	Oxygens      int     `json:"oxygens"`
	ElementRatio float64 `json:"element_ratio,omitempty"`
}

// OxideTable lists every oxide of r with its formula make-up.
func (r *Reference) OxideTable() []OxideInfo {
	names := r.Oxides()
	out := make([]OxideInfo, 0, len(names))
	for _, ox := range names {
		f, err := ParseFormula(ox)
		if err != nil {
			continue
		}
		mass, _ := r.OxideMass(ox)
		ratio, _ := r.ElementRatio(ox)
		out = append(out, OxideInfo{
			Oxide:        ox,
			MolarMass:    mass,
			Cation:       f.Cation,
			Cations:      f.Cations,
			Oxygens:      f.Oxygens,
			ElementRatio: ratio,
		})
	}
	return out
}

type Handler struct {
	Ref *Reference
}

func (h *Handler) Oxides(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Ref.OxideTable())
}
