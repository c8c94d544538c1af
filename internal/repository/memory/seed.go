package memory

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// Seed is a roster of units and staff for local runs without Postgres.
type Seed struct {
	Units []struct {
		ID       string `yaml:"id"`
		Name     string `yaml:"name"`
		WIPLimit int    `yaml:"wip_limit"`
	} `yaml:"units"`
	Staff []struct {
		ID           string   `yaml:"id"`
		UnitID       string   `yaml:"unit_id"`
		DisplayName  string   `yaml:"display_name"`
		Role         string   `yaml:"role"`
		WIPLimit     int      `yaml:"wip_limit"`
		Availability string   `yaml:"availability"`
		Skills       []string `yaml:"skills"`
	} `yaml:"staff"`
}

// LoadSeedFile reads a YAML roster from path into s.
func (s *Store) LoadSeedFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return s.LoadSeed(f)
}

// LoadSeed reads a YAML roster into s. Staff default to available.
func (s *Store) LoadSeed(r io.Reader) error {
	var seed Seed
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		return fmt.Errorf("decode seed: %w", err)
	}

	units := make(map[string]struct{}, len(seed.Units))
	for _, u := range seed.Units {
		if u.ID == "" || u.WIPLimit <= 0 {
			return fmt.Errorf("seed unit %q: id and positive wip_limit required", u.ID)
		}
		units[u.ID] = struct{}{}
		s.PutUnit(domain.OrganizationalUnit{ID: u.ID, Name: u.Name, UnitWIPLimit: u.WIPLimit})
	}

	for _, st := range seed.Staff {
		if _, ok := units[st.UnitID]; !ok {
			return fmt.Errorf("seed staff %q: unknown unit %q", st.ID, st.UnitID)
		}
		role := domain.Role(st.Role)
		if role == "" {
			role = domain.RoleStaff
		}
		if !role.Valid() || st.WIPLimit <= 0 {
			return fmt.Errorf("seed staff %q: valid role and positive wip_limit required", st.ID)
		}
		availability := domain.AvailabilityAvailable
		if st.Availability != "" {
			parsed, err := domain.ParseAvailability(st.Availability)
			if err != nil {
				return fmt.Errorf("seed staff %q: %w", st.ID, err)
			}
			availability = parsed
		}
		skills, err := domain.NormalizeSkills(st.Skills)
		if err != nil {
			return fmt.Errorf("seed staff %q: %w", st.ID, err)
		}
		s.PutStaff(domain.StaffProfile{
			ID:                 st.ID,
			UnitID:             st.UnitID,
			DisplayName:        st.DisplayName,
			Role:               role,
			IndividualWIPLimit: st.WIPLimit,
			Availability:       availability,
			Skills:             skills,
			Active:             true,
		})
	}
	return nil
}
