package fixtures

// Default returns the built-in reference tables. Each call returns fresh slices.
func Default() Tables {
	return Tables{
		Customers: map[string][]CustomerRecord{
			"medical": {
				{
					ID:         "1",
					Name:       "Malay Tiwari",
					Email:      "test.web@example.com",
					Phone:      "web_call",
					Address:    "Test Address, Web City, USA",
					Notes:      "Suffering from seasonal allergies.",
					DoctorName: "John Doe",
				},
				{
					ID:         "4",
					Name:       "Mayank Dhanik",
					Email:      "web.client@example.com",
					Phone:      "Web-Client-1148",
					Address:    "Web Client Address, Test City, USA",
					Notes:      "Suffering from chronic back pain.",
					DoctorName: "John Doe",
				},
			},
			"legal": {
				{
					ID:            "2",
					Name:          "Priya Sharma",
					Email:         "priya.sharma@example.com",
					Phone:         "web_call",
					Address:       "12 Court Street, Web City, USA",
					Notes:         "Tenancy dispute, awaiting landlord response.",
					Status:        "active",
					Tags:          []string{"tenancy", "priority"},
					LastContacted: "2025-01-10",
				},
				{
					ID:            "5",
					Name:          "Arjun Mehta",
					Email:         "arjun.mehta@example.com",
					Phone:         "Web-Client-1148",
					Address:       "48 Law Avenue, Test City, USA",
					Notes:         "Drafting a partnership agreement.",
					Status:        "prospect",
					Tags:          []string{"contracts"},
					LastContacted: "2025-01-22",
				},
			},
			"receptionist": {
				{
					ID:            "3",
					Name:          "Neha Kapoor",
					Email:         "neha.kapoor@example.com",
					Phone:         "web_call",
					Address:       "7 Front Desk Road, Web City, USA",
					Notes:         "Prefers morning appointments.",
					Status:        "returning",
					Tags:          []string{"vip"},
					LastContacted: "2025-02-03",
				},
			},
		},
		Doctors: []DoctorRecord{
			{
				ID:        "1",
				Name:      "John Doe",
				Email:     "test.web@example.com",
				Phone:     "web_call",
				FreeHours: "9:00 AM - 5:00 PM on Monday to Friday",
				Address:   "Test Address, Web City, USA",
				Notes:     "Suffering from seasonal allergies.",
			},
		},
		Illnesses: []IllnessRecord{
			{Name: "headache", Medicine: []string{"disprin", "ibuprofen"}},
			{Name: "chronic back pain", Medicine: []string{"ibuprofen", "naproxen"}},
		},
	}
}
