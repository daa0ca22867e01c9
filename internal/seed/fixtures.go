package seed

import (
	"fmt"
	"os"

	"koinonia/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixtures describes deterministic seed data loaded from a YAML file. Unlike
// the random factories, fixtures produce the same records every run, which
// demo environments rely on.
type Fixtures struct {
	Users   []UserFixture    `yaml:"users"`
	Content []ContentFixture `yaml:"content"`
}

type UserFixture struct {
	Username    string `yaml:"username"`
	Email       string `yaml:"email"`
	Password    string `yaml:"password"`
	DisplayName string `yaml:"display_name"`
	Admin       bool   `yaml:"admin"`
}

type ContentFixture struct {
	Type        string `yaml:"type"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	MediaURL    string `yaml:"media_url"`
	Owner       string `yaml:"owner"`
	Published   *bool  `yaml:"published"`
}

// LoadFixtures reads and parses a fixture file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return ParseFixtures(data)
}

// ParseFixtures parses fixture YAML.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	for i, u := range f.Users {
		if u.Username == "" || u.Email == "" {
			return nil, fmt.Errorf("fixture user %d: username and email are required", i)
		}
	}
	for i, c := range f.Content {
		if !models.ValidContentType(models.ContentType(c.Type)) {
			return nil, fmt.Errorf("fixture content %d: unknown type %q", i, c.Type)
		}
		if c.Title == "" || c.Owner == "" {
			return nil, fmt.Errorf("fixture content %d: title and owner are required", i)
		}
	}
	return &f, nil
}

// Apply persists the fixtures. Content owners are resolved by fixture
// username, so users must be declared before the content that references
// them.
func (f *Fixtures) Apply(db *gorm.DB) error {
	usersByName := make(map[string]*models.User, len(f.Users))

	for _, uf := range f.Users {
		password := uf.Password
		if password == "" {
			password = "password123"
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			return err
		}
		user := &models.User{
			Username:     uf.Username,
			Email:        uf.Email,
			PasswordHash: string(hash),
			DisplayName:  uf.DisplayName,
			IsAdmin:      uf.Admin,
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("fixture user %s: %w", uf.Username, err)
		}
		usersByName[uf.Username] = user
	}

	for _, cf := range f.Content {
		owner, ok := usersByName[cf.Owner]
		if !ok {
			return fmt.Errorf("fixture content %q: owner %q not declared", cf.Title, cf.Owner)
		}
		published := true
		if cf.Published != nil {
			published = *cf.Published
		}
		content := &models.Content{
			Type:        models.ContentType(cf.Type),
			Title:       cf.Title,
			Description: cf.Description,
			MediaURL:    cf.MediaURL,
			OwnerID:     owner.ID,
			Published:   published,
		}
		if err := db.Create(content).Error; err != nil {
			return fmt.Errorf("fixture content %q: %w", cf.Title, err)
		}
	}

	return nil
}
