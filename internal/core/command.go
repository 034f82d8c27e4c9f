package core

// CommandType is the label of a remote command.
type CommandType string

// Recognized command labels. The write layer accepts any label; these are
// the ones the dashboard offers.
const (
	CommandCamFront    CommandType = "CAM_FRONT"
	CommandCamBack     CommandType = "CAM_BACK"
	CommandLocation    CommandType = "LOCATION"
	CommandStreamStart CommandType = "SCREEN_STREAM_START"
	CommandStreamStop  CommandType = "SCREEN_STREAM_STOP"
)

// KnownCommands lists the recognized labels in display order.
var KnownCommands = []CommandType{
	CommandCamFront,
	CommandCamBack,
	CommandLocation,
	CommandStreamStart,
	CommandStreamStop,
}

// IsKnown reports whether the label is one of the recognized commands.
func (c CommandType) IsKnown() bool {
	for _, k := range KnownCommands {
		if c == k {
			return true
		}
	}
	return false
}

// Label returns the human readable button label.
func (c CommandType) Label() string {
	switch c {
	case CommandCamFront:
		return "Front Cam"
	case CommandCamBack:
		return "Back Cam"
	case CommandLocation:
		return "Location"
	case CommandStreamStart:
		return "Start Stream"
	case CommandStreamStop:
		return "Stop Stream"
	default:
		return string(c)
	}
}

// Command is a write-only instruction addressed to a device.
type Command struct {
	DeviceUUID  string      `json:"device_uuid"`
	CommandType CommandType `json:"command_type"`
}
