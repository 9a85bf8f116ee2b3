package model

// Seed returns the sample collection loaded when no seed file is configured.
func Seed() Collection {
	return NewCollection([]Card{
		{
			ID:    "1",
			Title: "My Website",
			Buttons: []Button{
				{ID: "b_seed1", Label: "Home", URL: "https://www.mywebsite.com"},
				{ID: "b_seed2", Label: "Contact", URL: "https://www.mywebsite.com/contact"},
			},
		},
		{
			ID:    "2",
			Title: "LinkedIn Profile",
			Buttons: []Button{
				{ID: "b_seed3", Label: "LinkedIn", URL: "https://www.linkedin.com/in/myprofile"},
			},
		},
	})
}
