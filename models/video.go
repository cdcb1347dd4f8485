package models

const (
	UnknownTitle   = "未知视频"
	UnknownChannel = "未知来源"
)

// VideoInfo is the metadata Media Acquisition reports for a downloaded video.
type VideoInfo struct {
	Title      string `json:"title" msgpack:"title"`
	Channel    string `json:"channel" msgpack:"channel"`
	Duration   int    `json:"duration" msgpack:"duration"`
	UploadDate string `json:"upload_date" msgpack:"upload_date"`
	SourceURL  string `json:"source_url" msgpack:"source_url"`
}

// Segment is a time-stamped fragment of a transcript. Times are in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type Transcript struct {
	FullText string    `json:"full_text"`
	Segments []Segment `json:"segments"`
}
