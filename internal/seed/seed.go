// Package seed fills an empty store with demo events.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventify/internal/logger"
	"eventify/internal/models"
)

type fixture struct {
	category    string
	title       string
	location    string
	daysFromNow int
}

var fixtures = []fixture{
	{"College", "Artificial Intelligence Workshop", "Tech Lab 101", 5},
	{"College", "Annual College Fest 2025", "Main Auditorium", 15},
	{"College", "Guest Lecture on Quantum Computing", "Seminar Hall B", 8},
	{"College", "Coding Hackathon Finals", "Computer Center", 12},
	{"College", "Career Fair & Job Expo", "Exhibition Ground", 20},
	{"College", "Data Science Symposium", "Conference Room A", 18},
	{"College", "Student Council Elections", "Central Campus", 25},
	{"College", "Web Development Bootcamp", "IT Block", 10},
	{"College", "Research Paper Presentation", "Auditorium 2", 7},
	{"College", "Alumni Meet & Greet", "Student Center", 30},

	{"Festival", "Diwali Celebration 2025", "City Park", 45},
	{"Festival", "New Year Music Festival", "Riverside Arena", 60},
	{"Festival", "Spring Flower Festival", "Botanical Gardens", 90},
	{"Festival", "Summer Food Festival", "Downtown Plaza", 120},
	{"Festival", "Cultural Heritage Week", "Convention Center", 35},
	{"Festival", "Jazz & Blues Night", "Amphitheater", 22},
	{"Festival", "Street Art Festival", "Arts District", 28},
	{"Festival", "Independence Day Parade", "Main Street", 150},
	{"Festival", "Lantern Festival", "Lakeside Park", 40},
	{"Festival", "Comedy Festival Weekend", "Comedy Club", 14},

	{"Sports", "Inter-College Basketball Tournament", "Sports Complex A", 6},
	{"Sports", "Marathon 2025", "City Stadium", 17},
	{"Sports", "Swimming Championship", "Aquatic Center", 11},
	{"Sports", "Cricket League Finals", "Cricket Ground", 21},
	{"Sports", "Tennis Open Tournament", "Tennis Courts", 9},
	{"Sports", "Football League Playoffs", "Football Stadium", 13},
	{"Sports", "Badminton Championships", "Indoor Sports Hall", 16},
	{"Sports", "Yoga & Fitness Workshop", "Wellness Center", 4},
	{"Sports", "Table Tennis Competition", "Recreation Hall", 19},
	{"Sports", "Athletics Meet", "Running Track", 24},

	{"Personal", "Birthday Party - Sarah", "The Garden Restaurant", 3},
	{"Personal", "Wedding Anniversary Dinner", "Grand Hotel Ballroom", 31},
	{"Personal", "Family Reunion Picnic", "Sunset Beach", 42},
	{"Personal", "Book Club Meeting", "Coffee House", 2},
	{"Personal", "Photography Exhibition Opening", "Art Gallery", 26},
	{"Personal", "Piano Recital", "Music Hall", 33},
	{"Personal", "Cooking Class - Italian Cuisine", "Culinary Institute", 8},
	{"Personal", "Weekend Hiking Trip", "Mountain Trail", 5},
	{"Personal", "Movie Night with Friends", "Home Theater", 1},
	{"Personal", "Pottery Workshop", "Art Studio", 12},
}

type Store interface {
	InsertEvent(ctx context.Context, ev *models.Event) (string, error)
	DeleteAllEvents(ctx context.Context) (int64, error)
}

// Events returns the demo set dated relative to today and owned by creator.
func Events(today time.Time, creator string) []models.Event {
	base := models.DateOf(today)
	out := make([]models.Event, 0, len(fixtures))
	for _, f := range fixtures {
		out = append(out, models.Event{
			Title:     f.title,
			Date:      models.DateOf(base.AddDate(0, 0, f.daysFromNow)),
			Category:  f.category,
			Location:  f.location,
			CreatedBy: creator,
		})
	}
	return out
}

// Run inserts the demo set, optionally clearing the store first, and
// returns the number of events created.
func Run(ctx context.Context, store Store, creator string, reset bool, today time.Time, log *logger.Logger) (int, error) {
	if creator == "" {
		return 0, errors.New("seed: creator is required")
	}

	if reset {
		n, err := store.DeleteAllEvents(ctx)
		if err != nil {
			return 0, fmt.Errorf("seed: clear events: %w", err)
		}
		log.Info("SEED", fmt.Sprintf("Cleared %d existing events", n))
	}

	created := 0
	perCategory := map[string]int{}
	for _, ev := range Events(today, creator) {
		if _, err := store.InsertEvent(ctx, &ev); err != nil {
			return created, fmt.Errorf("seed: insert %q: %w", ev.Title, err)
		}
		created++
		perCategory[ev.Category]++
	}

	log.Info("SEED", fmt.Sprintf("Created %d events for %s", created, creator))
	for _, category := range models.SuggestedCategories {
		log.Info("SEED", fmt.Sprintf("  %s: %d events", category, perCategory[category]))
	}
	return created, nil
}
