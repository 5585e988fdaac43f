package detection

const (
	EventIDFlagged    = "ofly:flagged"
	EventIDMitigation = "ofly:mitigation"
	EventIDPunished   = "ofly:punished"
)

// Event is emitted by a Manager for the host to forward, for example to a remote server.
type Event interface {
	ID() string
}

type FlaggedEvent struct {
	Entity     string  `json:"player"`
	Detection  string  `json:"check_main"`
	Type       string  `json:"check_sub"`
	Violations float64 `json:"violations"`
	ExtraData  string  `json:"extraData"`
}

func (e *FlaggedEvent) ID() string {
	return EventIDFlagged
}

type MitigationEvent struct {
	Entity    string  `json:"player"`
	Type      string  `json:"type"`
	SubType   string  `json:"sub_type"`
	ExtraData string  `json:"extra_data"`
	Count     float64 `json:"count"`
}

func (e *MitigationEvent) ID() string {
	return EventIDMitigation
}

type PunishedEvent struct {
	Entity  string `json:"player"`
	Type    string `json:"type"`
	SubType string `json:"sub_type"`
	Message string `json:"message"`
}

func (e *PunishedEvent) ID() string {
	return EventIDPunished
}
