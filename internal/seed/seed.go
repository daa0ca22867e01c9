package seed

import (
	"fmt"
	"log"
	"math/rand"

	"koinonia/internal/models"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers   int
	NumContent int
	// MaxDays bounds how far in the past generated records are spread.
	MaxDays     int
	ShouldClean bool
}

var seedTypes = []models.ContentType{
	models.ContentTypeMedia,
	models.ContentTypeDevotional,
	models.ContentTypeArtist,
	models.ContentTypeMerch,
	models.ContentTypeEbook,
	models.ContentTypePodcast,
}

// Seed populates the database with demo users, content, and engagement
// history. Safe to run repeatedly when ShouldClean is set.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 25
	}
	if opts.NumContent <= 0 {
		opts.NumContent = 120
	}

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("clear data: %w", err)
		}
	}

	factory := NewFactory(db, opts)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("seeded %d users", len(users))

	contents := make([]*models.Content, 0, opts.NumContent)
	for i := 0; i < opts.NumContent; i++ {
		owner := users[rand.Intn(len(users))]
		contents = append(contents, factory.BuildContent(owner, seedTypes[i%len(seedTypes)]))
	}
	if err := factory.CreateContentBatch(contents); err != nil {
		return fmt.Errorf("create content: %w", err)
	}
	log.Printf("seeded %d content items", len(contents))

	if err := seedEngagements(factory, users, contents); err != nil {
		return err
	}
	return nil
}

func seedEngagements(factory *Factory, users []*models.User, contents []*models.Content) error {
	var toggles, views, shares, comments int

	for _, content := range contents {
		// A random slice of users engages with each item. rand.Perm keeps
		// toggle tuples unique per (user, content, kind).
		engaged := rand.Perm(len(users))[:rand.Intn(len(users)/2+1)]
		for _, idx := range engaged {
			user := users[idx]
			if user.ID == content.OwnerID {
				continue
			}

			if err := factory.CreateToggle(user, content, models.KindLike); err != nil {
				return fmt.Errorf("create like: %w", err)
			}
			toggles++

			if rand.Intn(3) == 0 {
				if err := factory.CreateToggle(user, content, models.KindBookmark); err != nil {
					return fmt.Errorf("create bookmark: %w", err)
				}
				toggles++
			}
			if rand.Intn(4) == 0 {
				if err := factory.CreateToggle(user, content, models.KindFollow); err != nil {
					return fmt.Errorf("create follow: %w", err)
				}
				toggles++
			}
			if err := factory.CreateView(user, content); err != nil {
				return fmt.Errorf("create view: %w", err)
			}
			views++
			if rand.Intn(5) == 0 {
				if err := factory.CreateShare(user, content); err != nil {
					return fmt.Errorf("create share: %w", err)
				}
				shares++
			}

			if rand.Intn(3) == 0 {
				comment, err := factory.CreateComment(user, content, nil)
				if err != nil {
					return fmt.Errorf("create comment: %w", err)
				}
				comments++
				if rand.Intn(3) == 0 {
					replier := users[rand.Intn(len(users))]
					if _, err := factory.CreateComment(replier, content, &comment.ID); err != nil {
						return fmt.Errorf("create reply: %w", err)
					}
					comments++
				}
			}
		}
	}

	log.Printf("seeded %d toggles, %d views, %d shares, %d comments", toggles, views, shares, comments)
	return nil
}

func clearData(db *gorm.DB) error {
	tables := []string{"engagements", "comments", "contents", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
