package roster

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/linnemanlabs/go-core/xerrors"
)

// ParseRoster reads a JSON array of officers, the bootstrap roster format.
// Status is optional per entry and defaults to available at seed time.
func ParseRoster(r io.Reader) ([]Officer, error) {
	var officers []Officer
	if err := json.NewDecoder(r).Decode(&officers); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	if len(officers) == 0 {
		return nil, xerrors.New("roster is empty")
	}

	seen := make(map[string]bool, len(officers))
	for i, o := range officers {
		if o.ID == "" {
			return nil, fmt.Errorf("roster entry %d: missing id", i)
		}
		if seen[o.ID] {
			return nil, fmt.Errorf("roster entry %d: duplicate id %s", i, o.ID)
		}
		seen[o.ID] = true
	}
	return officers, nil
}

// LoadRosterFile parses the roster from a file on disk.
func LoadRosterFile(path string) ([]Officer, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is from trusted config, not user input
	if err != nil {
		return nil, fmt.Errorf("open roster file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseRoster(f)
}

// DefaultRoster returns the built-in demo roster used when no roster file is
// configured.
func DefaultRoster() []Officer {
	return []Officer{
		{ID: "officer-101", Name: "Officer James", Badge: "B-1204", Status: StatusAvailable, Location: "Main Gate", AvatarRef: "/avatars/officer1.jpg"},
		{ID: "officer-102", Name: "Medical Team A", Badge: "M-225", Status: StatusAvailable, Location: "Health Center", AvatarRef: "/avatars/medical-team.jpg"},
		{ID: "officer-103", Name: "Officer Sarah", Badge: "B-1508", Status: StatusAvailable, Location: "Patrol - East Campus", AvatarRef: "/avatars/officer2.jpg"},
		{ID: "officer-104", Name: "Officer Michael", Badge: "B-1356", Status: StatusAvailable, Location: "Security Office", AvatarRef: "/avatars/officer3.jpg"},
		{ID: "officer-105", Name: "Officer Lisa", Badge: "B-1782", Status: StatusOffDuty, Location: "Off Campus", AvatarRef: "/avatars/officer4.jpg"},
	}
}
