package storage

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

type seedTemplate struct {
	titles   []string
	min, max float64
	notes    []string
}

var seedTemplates = map[string]seedTemplate{
	"STAFF": {
		titles: []string{"Employee Lunch", "Office Supplies", "Staff Training", "Team Meeting"},
		min:    150, max: 2500,
		notes: []string{"Training session", "Monthly supplies", "Team building", ""},
	},
	"TRAVEL": {
		titles: []string{"Client Visit", "Taxi Fare", "Fuel Expense", "Parking Fee"},
		min:    50, max: 1200,
		notes: []string{"Client meeting", "Business trip", "Daily commute", ""},
	},
	"FOOD": {
		titles: []string{"Office Lunch", "Coffee Meeting", "Team Dinner", "Snacks"},
		min:    25, max: 800,
		notes: []string{"Business lunch", "Client meeting", "Office snacks", ""},
	},
	"UTILITY": {
		titles: []string{"Internet Bill", "Phone Bill", "Electricity", "Office Rent"},
		min:    200, max: 5000,
		notes: []string{"Monthly bill", "Office utilities", "Communication", ""},
	},
}

var seedCategories = []string{"STAFF", "TRAVEL", "FOOD", "UTILITY"}

// DemoRecords generates one to four random expenses for each of the last
// seven days before now, between 08:00 and 20:59 local time.
func DemoRecords(now time.Time, rng *rand.Rand) []Record {
	var out []Record
	for offset := 0; offset < 7; offset++ {
		day := now.AddDate(0, 0, -offset)
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())
		perDay := 1 + rng.IntN(4)
		for i := 0; i < perDay; i++ {
			at := start.Add(time.Duration(8+rng.IntN(13))*time.Hour + time.Duration(rng.IntN(60))*time.Minute)
			out = append(out, demoRecord(at, rng))
		}
	}
	return out
}

func demoRecord(at time.Time, rng *rand.Rand) Record {
	category := seedCategories[rng.IntN(len(seedCategories))]
	tpl := seedTemplates[category]
	r := Record{
		ID:        uuid.NewString(),
		Title:     tpl.titles[rng.IntN(len(tpl.titles))],
		Amount:    tpl.min + (tpl.max-tpl.min)*rng.Float64(),
		Category:  category,
		Timestamp: at.UnixMilli(),
	}
	if n := tpl.notes[rng.IntN(len(tpl.notes))]; n != "" {
		r.Notes = &n
	}
	if rng.IntN(11) > 7 {
		u := "mock://receipt_" + uuid.NewString() + ".jpg"
		r.ReceiptImageURL = &u
	}
	return r
}
