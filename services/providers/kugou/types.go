package kugou

// SearchResponse represents the response from Kugou lyrics search API
type SearchResponse struct {
	Status  int    `json:"status"`
	Info    string `json:"info"`
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
	Keyword string `json:"keyword"`

	Candidates []LyricsCandidate `json:"candidates"`
}

// LyricsCandidate represents a lyrics match candidate
type LyricsCandidate struct {
	ID          string `json:"id"`
	ProductFrom string `json:"product_from"`
	AccessKey   string `json:"accesskey"`
	Singer      string `json:"singer"`
	Song        string `json:"song"`
	Duration    int    `json:"duration"` // Duration in milliseconds
	Language    string `json:"language"`
	KRCType     int    `json:"krctype"` // 1 = synced, 2 = other
	Score       int    `json:"score"`
}

// DownloadResponse represents the response from Kugou lyrics download API
type DownloadResponse struct {
	Status    int    `json:"status"`
	Info      string `json:"info"`
	ErrorCode int    `json:"error_code"`
	Fmt       string `json:"fmt"`
	Charset   string `json:"charset"`
	Content   string `json:"content"` // Base64-encoded LRC content
}

// SongSearchResponse represents the response from Kugou song search API
type SongSearchResponse struct {
	Status  int `json:"status"`
	ErrCode int `json:"errcode"`
	Data    struct {
		Total int        `json:"total"`
		Info  []SongInfo `json:"info"`
	} `json:"data"`
}

// SongInfo represents a song from the search results
type SongInfo struct {
	Hash       string `json:"hash"`
	SQHash     string `json:"sqhash"`
	Hash320    string `json:"320hash"`
	SongName   string `json:"songname"`
	SingerName string `json:"singername"`
	AlbumName  string `json:"album_name"`
	Duration   int    `json:"duration"` // Duration in seconds
}
