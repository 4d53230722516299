package database

// Video is one row of egodex_videos. Score holds whatever the query
// ranked by: cosine distance for semantic, ts_rank for keyword.
type Video struct {
	Task        string
	Description string
	MP4URI      string
	H5URI       string
	Score       float64
}
