package events

const (
	// KindMuteChanged identifies a change to engine speech muting.
	KindMuteChanged Kind = "media.mute_changed"
	// KindCameraChanged identifies a change to the camera track.
	KindCameraChanged Kind = "media.camera_changed"
	// KindMicrophoneChanged identifies a change to the microphone track.
	KindMicrophoneChanged Kind = "media.microphone_changed"
)

type MuteChanged struct {
	Base
	IsMuted bool
}

func NewMuteChanged(isMuted bool) MuteChanged {
	return MuteChanged{Base: NewBase(KindMuteChanged), IsMuted: isMuted}
}

type CameraChanged struct {
	Base
	IsOn bool
}

func NewCameraChanged(isOn bool) CameraChanged {
	return CameraChanged{Base: NewBase(KindCameraChanged), IsOn: isOn}
}

type MicrophoneChanged struct {
	Base
	IsOn bool
}

func NewMicrophoneChanged(isOn bool) MicrophoneChanged {
	return MicrophoneChanged{Base: NewBase(KindMicrophoneChanged), IsOn: isOn}
}
