// Package seed provides helpers to create demo and test data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"koinonia/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
	opts Options
}

// NewFactory creates a Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		opts: opts,
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Email:        gofakeit.Email(),
		PasswordHash: string(hash),
		DisplayName:  gofakeit.Name(),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

var contentTitles = map[models.ContentType][]string{
	models.ContentTypeMedia:      {"Sunday Worship Session", "Acoustic Hymns Vol. %d", "Live from the Upper Room %d"},
	models.ContentTypeDevotional: {"Daily Bread Day %d", "Psalms in the Morning %d", "Walking in Grace %d"},
	models.ContentTypeArtist:     {"The %s Collective", "%s & the Remnant", "House of %s"},
	models.ContentTypeMerch:      {"Faith Over Fear Tee %d", "Grace Hoodie %d", "Psalm 23 Print %d"},
	models.ContentTypeEbook:      {"40 Days of Prayer %d", "Notes on the Gospels %d", "The Quiet Hour %d"},
	models.ContentTypePodcast:    {"Upper Room Conversations Ep. %d", "Testimony Tuesday Ep. %d", "The Narrow Road Ep. %d"},
}

// BuildContent constructs a content item without persisting it. Created
// timestamps are spread over the recent past so trending windows have
// something to slice.
func (f *Factory) BuildContent(owner *models.User, contentType models.ContentType, overrides ...func(*models.Content)) *models.Content {
	templates := contentTitles[contentType]
	title := fmt.Sprintf(templates[f.rand.Intn(len(templates))], f.rand.Intn(900)+1)
	if contentType == models.ContentTypeArtist {
		title = fmt.Sprintf(templates[f.rand.Intn(len(templates))], gofakeit.LastName())
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	createdAt := time.Now().UTC().
		Add(-time.Duration(f.rand.Intn(maxDays)) * 24 * time.Hour).
		Add(-time.Duration(f.rand.Intn(24)) * time.Hour)

	content := &models.Content{
		Type:        contentType,
		Title:       title,
		Description: gofakeit.Paragraph(1, 3, 8, "\n"),
		MediaURL:    fmt.Sprintf("https://cdn.koinonia.app/%s/%s", contentType, gofakeit.UUID()),
		OwnerID:     owner.ID,
		Published:   true,
		CreatedAt:   createdAt,
	}
	for _, override := range overrides {
		override(content)
	}
	return content
}

// CreateContentBatch persists multiple content items in a single DB call.
func (f *Factory) CreateContentBatch(contents []*models.Content) error {
	if len(contents) == 0 {
		return nil
	}
	return f.db.Create(&contents).Error
}

// CreateComment persists a comment from user on content, optionally as a
// reply.
func (f *Factory) CreateComment(user *models.User, content *models.Content, parentID *uint) (*models.Comment, error) {
	comment := &models.Comment{
		UserID:      user.ID,
		ContentID:   content.ID,
		ContentType: content.Type,
		Content:     gofakeit.Sentence(f.rand.Intn(12) + 3),
		ParentID:    parentID,
		Reactions:   models.ReactionSet{},
		CreatedAt:   content.CreatedAt.Add(time.Duration(f.rand.Intn(72)) * time.Hour),
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateToggle persists an active toggle row for user on content.
func (f *Factory) CreateToggle(user *models.User, content *models.Content, kind models.Kind) error {
	record := &models.Engagement{
		UserID:      user.ID,
		ContentID:   content.ID,
		ContentType: content.Type,
		Kind:        kind,
		CreatedAt:   content.CreatedAt.Add(time.Duration(f.rand.Intn(96)) * time.Hour),
	}
	return f.db.Create(record).Error
}

// CreateView persists a view event with plausible watch metadata.
func (f *Factory) CreateView(user *models.User, content *models.Content) error {
	duration := f.rand.Intn(600)
	complete := f.rand.Intn(4) == 0
	record := &models.Engagement{
		UserID:          user.ID,
		ContentID:       content.ID,
		ContentType:     content.Type,
		Kind:            models.KindView,
		DurationSeconds: duration,
		IsComplete:      complete,
		Countable:       duration >= 30 || complete,
		CreatedAt:       content.CreatedAt.Add(time.Duration(f.rand.Intn(96)) * time.Hour),
	}
	return f.db.Create(record).Error
}

// CreateShare persists a share event on a random platform.
func (f *Factory) CreateShare(user *models.User, content *models.Content) error {
	platforms := []string{"whatsapp", "instagram", "facebook", "x", "link"}
	record := &models.Engagement{
		UserID:      user.ID,
		ContentID:   content.ID,
		ContentType: content.Type,
		Kind:        models.KindShare,
		Platform:    platforms[f.rand.Intn(len(platforms))],
		CreatedAt:   content.CreatedAt.Add(time.Duration(f.rand.Intn(96)) * time.Hour),
	}
	return f.db.Create(record).Error
}
