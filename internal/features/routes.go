package features

// Route city pair; popularity checks ignore direction
type Route struct {
	From string
	To   string
}

// HistoricalPopularRoutes used when loading historical fare tables.
var HistoricalPopularRoutes = []Route{
	{"Delhi", "Mumbai"}, {"Mumbai", "Bangalore"}, {"Delhi", "Bangalore"},
	{"Chennai", "Mumbai"}, {"Delhi", "Chennai"}, {"Mumbai", "Chennai"},
	{"Kolkata", "Mumbai"}, {"Hyderabad", "Mumbai"}, {"Delhi", "Kolkata"},
}

// SyntheticPopularRoutes used by the synthetic fare generator.
var SyntheticPopularRoutes = []Route{
	{"Delhi", "Mumbai"}, {"Mumbai", "Bangalore"}, {"Delhi", "Bangalore"},
	{"Chennai", "Mumbai"}, {"Delhi", "Chennai"}, {"Mumbai", "Chennai"},
}

// InferencePopularRoutes used at prediction time and in factor explanations.
// Membership differs from the training lists; kept as-is so predictions match
// the fitted model's behavior.
var InferencePopularRoutes = []Route{
	{"Delhi", "Mumbai"}, {"Mumbai", "Bangalore"}, {"Delhi", "Bangalore"},
}

// IsPopular reports whether a-b or b-a is in routes.
func IsPopular(routes []Route, a, b string) bool {
	for _, r := range routes {
		if (r.From == a && r.To == b) || (r.From == b && r.To == a) {
			return true
		}
	}
	return false
}
