package model

// FFProbeOutput is the subset of `ffprobe -show_streams` JSON the harness
// inspects when deciding whether audio is already canonical PCM.
type FFProbeOutput struct {
	Streams []FFProbeStream `json:"streams"`
}

type FFProbeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	SampleRate int    `json:"sample_rate,string"`
	Channels   int    `json:"channels"`
}
