package catalog

import (
	"fmt"

	"villaops/pkg/model"
)

const DefaultVersion = "2025-08"

const (
	PreArrivalCleaning     = "pre_arrival_cleaning"
	PreArrivalInspection   = "pre_arrival_inspection"
	WelcomePreparation     = "welcome_preparation"
	MidStayMaintenance     = "mid_stay_maintenance"
	CheckoutWalkthrough    = "checkout_walkthrough"
	PostCheckoutCleaning   = "post_checkout_cleaning"
	PostCheckoutInspection = "post_checkout_inspection"
	ACService              = "ac_service"
)

func defaultTemplates() []model.TaskTemplate {
	return []model.TaskTemplate{
		{
			ID:                       PreArrivalCleaning,
			Title:                    "Pre-arrival deep cleaning",
			Category:                 model.CategoryCleaning,
			EstimatedDurationMinutes: 180,
			Priority:                 model.PriorityHigh,
			RequiredSkills:           []string{"cleaning"},
			RequiredSupplies:         []string{"fresh linens", "towels", "cleaning kit", "amenity pack"},
			Timing:                   model.TimingRule{Kind: model.TimingBeforeCheckIn, Hours: 24},
			Instructions:             "Full clean of all rooms, make beds with fresh linens, restock bathroom amenities.",
		},
		{
			ID:                       PreArrivalInspection,
			Title:                    "Pre-arrival inspection",
			Category:                 model.CategoryInspection,
			EstimatedDurationMinutes: 45,
			Priority:                 model.PriorityHigh,
			RequiredSkills:           []string{"inspection"},
			RequiredSupplies:         []string{"inspection checklist"},
			Timing:                   model.TimingRule{Kind: model.TimingBeforeCheckIn, Hours: 4},
			Instructions:             "Walk through every room against the checklist, test appliances, report defects with photos.",
		},
		{
			ID:                       WelcomePreparation,
			Title:                    "Welcome preparation",
			Category:                 model.CategoryCheckinPrep,
			EstimatedDurationMinutes: 30,
			Priority:                 model.PriorityMedium,
			RequiredSkills:           []string{"guest services"},
			RequiredSupplies:         []string{"welcome basket", "keys"},
			Timing:                   model.TimingRule{Kind: model.TimingBeforeCheckIn, Hours: 2},
			Instructions:             "Set the welcome basket, set air conditioning to 24C, leave keys in the lockbox.",
		},
		{
			ID:                       MidStayMaintenance,
			Title:                    "Mid-stay maintenance",
			Category:                 model.CategoryMaintenance,
			EstimatedDurationMinutes: 90,
			Priority:                 model.PriorityMedium,
			RequiredSkills:           []string{"maintenance", "cleaning"},
			RequiredSupplies:         []string{"fresh linens", "towels", "pool kit"},
			Timing:                   model.TimingRule{Kind: model.TimingAtStayMidpoint, MinStayDays: 3},
			Instructions:             "Coordinate the visit with the guest. Swap towels and linens, check pool and garden.",
		},
		{
			ID:                       CheckoutWalkthrough,
			Title:                    "Checkout walkthrough",
			Category:                 model.CategoryCheckout,
			EstimatedDurationMinutes: 30,
			Priority:                 model.PriorityMedium,
			RequiredSkills:           []string{"guest services"},
			RequiredSupplies:         []string{"inventory checklist"},
			Timing:                   model.TimingRule{Kind: model.TimingBeforeCheckOut, Hours: 1},
			Instructions:             "Meet the guest, collect keys and note any reported issues.",
		},
		{
			ID:                       PostCheckoutCleaning,
			Title:                    "Post-checkout cleaning",
			Category:                 model.CategoryCleaning,
			EstimatedDurationMinutes: 240,
			Priority:                 model.PriorityHigh,
			RequiredSkills:           []string{"cleaning"},
			RequiredSupplies:         []string{"cleaning kit", "laundry bags"},
			Timing:                   model.TimingRule{Kind: model.TimingAfterCheckOut, Hours: 0},
			Instructions:             "Strip beds, collect laundry, clean all rooms and take out the trash.",
		},
		{
			ID:                       PostCheckoutInspection,
			Title:                    "Post-checkout damage inspection",
			Category:                 model.CategoryInspection,
			EstimatedDurationMinutes: 60,
			Priority:                 model.PriorityMedium,
			RequiredSkills:           []string{"inspection"},
			RequiredSupplies:         []string{"inspection checklist"},
			Timing:                   model.TimingRule{Kind: model.TimingAfterCheckOut, Hours: 4},
			Instructions:             "Check inventory and damages after cleaning, photograph anything broken.",
		},
		{
			ID:                       ACService,
			Title:                    "Air conditioning service",
			Category:                 model.CategoryMaintenance,
			EstimatedDurationMinutes: 60,
			Priority:                 model.PriorityHigh,
			RequiredSkills:           []string{"ac repair"},
			RequiredSupplies:         []string{"ac filters"},
			Timing:                   model.TimingRule{Kind: model.TimingAfterCheckOut, Hours: 2},
			Instructions:             "Clean or replace filters and check the cooling of every unit.",
			Specialized:              true,
		},
	}
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(DefaultVersion, defaultTemplates())
	if err != nil {
		panic(fmt.Sprintf("built-in job catalog is invalid: %v", err))
	}
	return c
}
