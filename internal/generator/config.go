package generator

// Config drives the synthetic network generator.
type Config struct {
	NumRMs       int
	NumPersons   int
	NumCompanies int
	NumEvents    int
	NumNetworks  int
	// KnowsPerPerson is the mean number of knows edges a person starts.
	KnowsPerPerson int
	ClientRatio    float64
	InfluencerRate float64
	Seed           int64
}

// DefaultConfig returns a network small enough to explore comfortably.
func DefaultConfig() Config {
	return Config{
		NumRMs:         3,
		NumPersons:     60,
		NumCompanies:   15,
		NumEvents:      6,
		NumNetworks:    5,
		KnowsPerPerson: 2,
		ClientRatio:    0.3,
		InfluencerRate: 0.1,
		Seed:           42,
	}
}
