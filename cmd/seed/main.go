package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/foodbridge/pickup-api/internal/models"
	"github.com/foodbridge/pickup-api/internal/repository"
	"github.com/foodbridge/pickup-api/internal/service"
	"github.com/foodbridge/pickup-api/pkg/config"
	"github.com/foodbridge/pickup-api/pkg/database"
)

// Development seeder: inserts a pair of pickup locations with opening
// schedules, two households, and prints bearer tokens for local API calls.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	locations := repository.NewLocationRepository(db)
	schedules := repository.NewScheduleRepository(db)
	households := repository.NewHouseholdRepository(db)

	capacity := 40
	north := &models.PickupLocation{
		Name:                "Distribution Point North",
		Address:             "Havenstraat 12",
		MaxParcelsPerDay:    &capacity,
		SlotDurationMinutes: 15,
		Active:              true,
	}
	if err := locations.Create(ctx, north); err != nil {
		log.Fatalf("seed location: %v", err)
	}

	south := &models.PickupLocation{
		Name:                "Distribution Point South",
		Address:             "Marktplein 3",
		SlotDurationMinutes: 30,
		Active:              true,
	}
	if err := locations.Create(ctx, south); err != nil {
		log.Fatalf("seed location: %v", err)
	}

	year := time.Now().Year()
	weekdays := func(open string, close string) map[time.Weekday]models.DaySpec {
		days := make(map[time.Weekday]models.DaySpec, 7)
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			spec := models.DaySpec{Weekday: wd}
			if wd >= time.Monday && wd <= time.Friday {
				spec.IsOpen = true
				spec.OpensAt = open
				spec.ClosesAt = close
			}
			days[wd] = spec
		}
		return days
	}

	for _, seed := range []struct {
		location *models.PickupLocation
		open     string
		close    string
	}{
		{north, "09:00", "17:00"},
		{south, "10:00", "15:30"},
	} {
		schedule := &models.OpeningSchedule{
			LocationID: seed.location.ID,
			Name:       fmt.Sprintf("Regular hours %d", year),
			StartDate:  time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
			Days:       weekdays(seed.open, seed.close),
		}
		if err := schedules.Create(ctx, schedule); err != nil {
			log.Fatalf("seed schedule: %v", err)
		}
	}

	for _, household := range []*models.Household{
		{ReferenceCode: "FB-1001", Name: "Jansen", Phone: "+31600000001"},
		{ReferenceCode: "FB-1002", Name: "De Vries", Phone: "+31600000002"},
	} {
		if err := households.Create(ctx, household); err != nil {
			log.Fatalf("seed household: %v", err)
		}
		fmt.Printf("household %s -> %s\n", household.ReferenceCode, household.ID)
	}

	fmt.Printf("location north -> %s\n", north.ID)
	fmt.Printf("location south -> %s\n", south.ID)

	auth := service.NewAuthService(service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
	}, nil)

	for _, account := range []struct {
		id   string
		role models.UserRole
		name string
	}{
		{"dev-admin", models.RoleAdmin, "Dev Admin"},
		{"dev-staff", models.RoleStaff, "Dev Staff"},
	} {
		token, err := auth.IssueDevToken(account.id, account.role, account.name)
		if err != nil {
			log.Fatalf("issue token for %s: %v", account.id, err)
		}
		fmt.Printf("%s token:\n%s\n", account.role, token)
	}
}
