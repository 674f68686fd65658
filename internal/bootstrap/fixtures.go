// Package bootstrap loads the fixture accounts used to provision a fresh database.
package bootstrap

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/internship-api/internal/models"
	"github.com/noah-isme/internship-api/internal/service"
)

//go:embed fixtures.json
var defaultFixtures []byte

//go:embed fixtures.schema.json
var fixtureSchema []byte

const schemaURL = "fixtures.schema.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Fixtures is the decoded fixture document.
type Fixtures struct {
	Users []FixtureUser `json:"users"`
}

// FixtureUser is one account entry. At most one profile block may be present and it must match
// the user type.
type FixtureUser struct {
	Email      string                         `json:"email"`
	Password   string                         `json:"password"`
	FullName   string                         `json:"full_name"`
	Phone      string                         `json:"phone"`
	Role       string                         `json:"user_type"`
	Student    *models.Student                `json:"student,omitempty"`
	HOD        *models.HOD                    `json:"hod,omitempty"`
	Supervisor *models.OrganizationSupervisor `json:"supervisor,omitempty"`
}

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource(schemaURL, bytes.NewReader(fixtureSchema)); err != nil {
			compileErr = fmt.Errorf("failed to load fixture schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(schemaURL)
	})
	return compiled, compileErr
}

// DefaultFixtures returns the built-in sample accounts, one per role.
func DefaultFixtures() (Fixtures, error) {
	return ParseFixtures(defaultFixtures)
}

// ParseFixtures validates data against the fixture schema and decodes it.
func ParseFixtures(data []byte) (Fixtures, error) {
	sch, err := schema()
	if err != nil {
		return Fixtures{}, err
	}

	var document interface{}
	if err := json.Unmarshal(data, &document); err != nil {
		return Fixtures{}, fmt.Errorf("invalid fixture json: %w", err)
	}
	if err := sch.Validate(document); err != nil {
		return Fixtures{}, fmt.Errorf("fixtures do not match schema: %w", err)
	}

	var fixtures Fixtures
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return Fixtures{}, fmt.Errorf("failed to decode fixtures: %w", err)
	}
	return fixtures, nil
}

// SeedUsers converts the fixtures into seed requests for service.SeedService.
func (f Fixtures) SeedUsers() ([]service.SeedUser, error) {
	out := make([]service.SeedUser, 0, len(f.Users))
	for _, entry := range f.Users {
		role, err := models.ParseRole(entry.Role)
		if err != nil {
			return nil, err
		}

		seed := service.SeedUser{
			User: models.User{
				Email:    entry.Email,
				FullName: entry.FullName,
				Phone:    entry.Phone,
				Role:     role,
			},
			Password: entry.Password,
		}
		switch {
		case entry.Student != nil:
			seed.Profile = service.StudentProfile{Student: *entry.Student}
		case entry.HOD != nil:
			seed.Profile = service.HODProfile{HOD: *entry.HOD}
		case entry.Supervisor != nil:
			seed.Profile = service.SupervisorProfile{OrganizationSupervisor: *entry.Supervisor}
		}
		out = append(out, seed)
	}
	return out, nil
}
