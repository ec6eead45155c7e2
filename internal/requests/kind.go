package requests

import "emsbot/internal/config"

// Kind tags the type of request being submitted and decides the form
// layout (date-ranged or time-ranged) and the notification channel
type Kind string

const (
	KindIccVacation Kind = "vacation-icc"
	KindOcVacation  Kind = "vacation-oc"
	KindBreak       Kind = "break"
)

var Kinds = []Kind{
	KindIccVacation,
	KindOcVacation,
	KindBreak,
}

func (k Kind) IsValid() bool {
	switch k {
	case KindIccVacation, KindOcVacation, KindBreak:
		return true
	}
	return false
}

// IsTimeRanged reports whether the kind's form carries HH:MM times
// rather than DD.MM.YYYY dates
func (k Kind) IsTimeRanged() bool {
	return k == KindBreak
}

func (k Kind) Title() string {
	switch k {
	case KindIccVacation:
		return "ICC Vacation"
	case KindOcVacation:
		return "OC Vacation"
	case KindBreak:
		return "Break"
	}
	return string(k)
}

// ChannelKey returns the configuration key holding the notification
// channel for this kind
func (k Kind) ChannelKey() config.ChannelKey {
	switch k {
	case KindIccVacation:
		return config.ChannelKeyIccVacation
	case KindOcVacation:
		return config.ChannelKeyOcVacation
	case KindBreak:
		return config.ChannelKeyBreak
	}
	return ""
}
