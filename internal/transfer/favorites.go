package transfer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
)

// Favorite is a named snapshot of a list of items.
type Favorite struct {
	ID        string
	Name      string
	Items     []models.PlanItem
	CreatedAt time.Time
}

type favoriteDTO struct {
	ID        string    `json:"id"`
	Plans     []itemDTO `json:"plans"`
	CreatedAt string    `json:"createdAt"`
	Name      string    `json:"name"`
}

func EncodeFavorites(favs []Favorite) ([]byte, error) {
	out := make([]favoriteDTO, 0, len(favs))
	for _, f := range favs {
		out = append(out, favoriteDTO{
			ID:        f.ID,
			Plans:     itemsToDTO(f.Items),
			CreatedAt: timex.FormatISO(f.CreatedAt),
			Name:      f.Name,
		})
	}
	return json.Marshal(out)
}

// DecodeFavorites parses a favorites document. Item timestamps without an
// offset are read in loc.
func DecodeFavorites(data []byte, loc *time.Location) ([]Favorite, error) {
	var raw []favoriteDTO
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}

	out := make([]Favorite, 0, len(raw))
	for i, d := range raw {
		created, err := parseTime("createdAt", d.CreatedAt, loc)
		if err != nil {
			return nil, fmt.Errorf("favorites[%d]: %w", i, err)
		}
		f := Favorite{ID: d.ID, Name: d.Name, CreatedAt: created, Items: make([]models.PlanItem, 0, len(d.Plans))}
		for j, di := range d.Plans {
			it, err := itemFromDTO(di, loc)
			if err != nil {
				return nil, fmt.Errorf("favorites[%d].plans[%d]: %w", i, j, err)
			}
			f.Items = append(f.Items, it)
		}
		out = append(out, f)
	}
	return out, nil
}
