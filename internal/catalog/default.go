package catalog

// Default returns the built-in table of conditions.
func Default() *Catalog {
	return MustNew(
		DiagnosisRecord{
			Name:       HealthyName,
			Confidence: 98,
			Treatments: []string{
				"Continue regular watering and fertilization",
				"Maintain good air circulation around plants",
				"Monitor regularly for any changes",
			},
			Status: StatusHealthy,
		},
		DiagnosisRecord{
			Name:       "Powdery Mildew",
			Confidence: 94,
			Treatments: []string{
				"Remove and destroy infected leaves",
				"Apply neem oil or sulfur-based fungicide",
				"Improve air circulation and reduce humidity",
				"Avoid overhead watering",
			},
			Status: StatusDiseased,
		},
		DiagnosisRecord{
			Name:       "Leaf Rust",
			Confidence: 91,
			Treatments: []string{
				"Remove infected leaves immediately",
				"Apply copper-based fungicide",
				"Ensure proper spacing between plants",
				"Water at the base of plants, not on leaves",
			},
			Status: StatusDiseased,
		},
		DiagnosisRecord{
			Name:       "Bacterial Spot",
			Confidence: 89,
			Treatments: []string{
				"Remove and dispose of infected plant material",
				"Apply copper-based bactericide",
				"Avoid working with plants when wet",
				"Rotate crops to prevent recurrence",
			},
			Status: StatusDiseased,
		},
		DiagnosisRecord{
			Name:       "Early Blight",
			Confidence: 93,
			Treatments: []string{
				"Remove lower leaves that touch the ground",
				"Apply fungicide containing chlorothalonil",
				"Mulch around plants to prevent soil splash",
				"Practice crop rotation",
			},
			Status: StatusDiseased,
		},
		DiagnosisRecord{
			Name:       "Septoria Leaf Spot",
			Confidence: 87,
			Treatments: []string{
				"Remove infected leaves from the bottom up",
				"Apply organic copper spray",
				"Stake plants for better air circulation",
				"Water in the morning to allow leaves to dry",
			},
			Status: StatusDiseased,
		},
	)
}
