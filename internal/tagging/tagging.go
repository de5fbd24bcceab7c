// Package tagging writes ID3v2 metadata to downloaded audio files.
package tagging

import (
	"fmt"

	"github.com/bogem/id3v2/v2"
)

// Metadata carries the fields written to an audio file. Empty fields are
// skipped rather than written as blank frames.
type Metadata struct {
	Title      string
	Channel    string
	UploadDate string // yt-dlp format, YYYYMMDD
	VideoID    string
}

// TagMP3 writes ID3v2 tags to the MP3 file at filePath
func TagMP3(filePath string, md Metadata) error {
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open MP3 file: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(4)

	if md.Title != "" {
		tag.SetTitle(md.Title)
	}
	if md.Channel != "" {
		tag.SetArtist(md.Channel)
		tag.AddTextFrame(tag.CommonID("Band/Orchestra/Accompaniment"), tag.DefaultEncoding(), md.Channel)
	}
	if year := uploadYear(md.UploadDate); year != "" {
		tag.SetYear(year)
	}
	if md.VideoID != "" {
		tag.AddTextFrame(tag.CommonID("WWWAudioSource"), tag.DefaultEncoding(),
			"https://www.youtube.com/watch?v="+md.VideoID)
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: "YOUTUBE_VIDEO_ID",
			Value:       md.VideoID,
		})
	}

	return tag.Save()
}

// uploadYear extracts the year from a YYYYMMDD upload date
func uploadYear(uploadDate string) string {
	if len(uploadDate) < 4 {
		return ""
	}
	return uploadDate[:4]
}
