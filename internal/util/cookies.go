package util

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/coah80/tunepull/internal/config"
)

var CookiesFile = filepath.Join(".", "cookies.txt")

var botDetectionErrors = []string{
	"Sign in to confirm you",
	"confirm your age",
	"Sign in to confirm your age",
}

func HasCookiesFile() bool {
	_, err := os.Stat(CookiesFile)
	return err == nil
}

func IsBotDetection(errorOutput string) bool {
	for _, e := range botDetectionErrors {
		if strings.Contains(errorOutput, e) {
			return true
		}
	}
	return false
}

func GetCookiesArgs() []string {
	if HasCookiesFile() {
		return []string{"--cookies", CookiesFile}
	}
	return nil
}

func GetProxyArgs() []string {
	if config.ProxyURL == "" {
		return nil
	}
	return []string{"--proxy", config.ProxyURL}
}
