package cli

import (
	"encoding/json"
	"sort"
	"strings"

	"marketplace/internal/domain"
)

// printJSON writes v as indented JSON
func printJSON(app *App, v interface{}) error {
	enc := json.NewEncoder(app.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printProviderDetail(app *App, p domain.ProviderDetail) {
	app.printf("%s  [#%d]\n", p.BusinessName, p.ID)
	app.printf("  City:         %s\n", p.CityName)
	app.printf("  Availability: %s\n", p.AvailabilityStatus)
	app.printf("  Rating:       %.1f (%d reviews)\n", p.AverageRating, p.TotalReviews)
	if len(p.Services) > 0 {
		app.printf("  Services:     %s\n", strings.Join(p.ServiceNames(), ", "))
	}
	if p.PhoneNumber != "" {
		app.printf("  Phone:        %s\n", p.PhoneNumber)
	}
	if p.Bio != "" {
		app.printf("  About:        %s\n", p.Bio)
	}
	if len(p.Portfolio) > 0 {
		app.printf("  Portfolio:    %d images\n", len(p.Portfolio))
	}
}

func printReviewsPage(app *App, page domain.ReviewsPage) {
	stats := page.Statistics
	if stats.TotalReviews > 0 {
		app.printf("Average %.1f from %d reviews\n", stats.AverageRating, stats.TotalReviews)
		stars := make([]int, 0, len(stats.RatingDistribution))
		for star := range stats.RatingDistribution {
			stars = append(stars, star)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(stars)))
		for _, star := range stars {
			app.printf("  %d★ %s %d\n", star, strings.Repeat("#", stats.RatingDistribution[star]), stats.RatingDistribution[star])
		}
	}

	if len(page.Reviews) == 0 {
		app.println("No reviews yet.")
		return
	}
	for _, r := range page.Reviews {
		author := r.ClientName
		if author == "" {
			author = "anonymous"
		}
		app.printf("[#%d] %d★ by %s", r.ID, r.Rating, author)
		if !r.CreatedAt.IsZero() {
			app.printf(" on %s", r.CreatedAt.Format("2006-01-02"))
		}
		app.println()
		app.printf("    %s\n", r.Comment)
	}
	if page.Pagination.HasNext() {
		app.printf("Page %d of %d\n", page.Pagination.Page, page.Pagination.TotalPages)
	}
}
