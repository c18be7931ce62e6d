package phase

// Manual marks a phase without timer.
const Manual = -1

// Config holds phase timings in seconds.
type Config struct {
	Night             int  `json:",default=60" yaml:"night"`
	Day               int  `json:",default=5" yaml:"day"`
	DeathAnnouncement int  `json:",default=10" yaml:"death_announcement"`
	DeathTrigger      int  `json:",default=30" yaml:"death_trigger"`
	SpeechTurn        int  `json:",default=60" yaml:"speech_turn"`
	PKSpeechTurn      int  `json:",default=30" yaml:"pk_speech_turn"`
	Poll              int  `json:",default=30" yaml:"poll"`
	SheriffElection   bool `json:",default=true" yaml:"sheriff_election"`
}

// DefaultConfig returns the default timings.
func DefaultConfig() Config {
	return Config{
		Night:             60,
		Day:               5,
		DeathAnnouncement: 10,
		DeathTrigger:      30,
		SpeechTurn:        60,
		PKSpeechTurn:      30,
		Poll:              30,
		SheriffElection:   true,
	}
}
