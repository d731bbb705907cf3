package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotenvIfPresent: 존재하는 .env 파일만 로드합니다.
// 인자가 없으면 DOTENV_FILES(콤마 구분), 그것도 없으면 ".env" 를 사용합니다.
// 이미 설정된 환경 변수는 덮어쓰지 않습니다.
func LoadDotenvIfPresent(paths ...string) error {
	if len(paths) == 0 {
		paths = dotenvPathsFromEnv()
	}

	existing := make([]string, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat dotenv file failed path=%s: %w", path, err)
		}
		existing = append(existing, path)
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load dotenv files failed paths=%v: %w", existing, err)
	}
	return nil
}

func dotenvPathsFromEnv() []string {
	raw := StringFromEnv("DOTENV_FILES", "")
	if raw == "" {
		return []string{".env"}
	}
	var paths []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			paths = append(paths, part)
		}
	}
	return paths
}
