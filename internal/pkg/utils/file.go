package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

//SupportAudioExt checks if audio ext is supported
func SupportAudioExt(ext string) bool {
	return ext == ".wav" || ext == ".mp3" || ext == ".mp4" || ext == ".m4a" || ext == ".ogg" || ext == ".webm"
}

// AudioContentType maps audio file extension to a content type
func AudioContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".wav":
		return "audio/wav"
	case ".m4a", ".mp4":
		return "audio/mp4"
	case ".ogg":
		return "audio/ogg"
	case ".webm":
		return "audio/webm"
	}
	return "audio/mpeg"
}

// MakeOriginalKey builds an object key for the original audio
func MakeOriginalKey(fileName string) (string, error) {
	fn, err := cleanFileName(fileName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("originals/%d-%s", time.Now().UnixMilli(), fn), nil
}

// MakeDubbedKey builds an object key for the dubbed audio of one dubbing
func MakeDubbedKey(dubbingID string) string {
	return fmt.Sprintf("dubbed/%s-%d.mp3", dubbingID, time.Now().UnixMilli())
}

func cleanFileName(fileName string) (string, error) {
	res := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	res = strings.ReplaceAll(res, " ", "_")
	if res == "" || res == "." || res == ".." || strings.HasPrefix(res, ".") {
		return "", fmt.Errorf("wrong file name '%s'", fileName)
	}
	return res, nil
}
