package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"clipz-ai/internal/appdirs"
)

var appDirsResolver = appdirs.Resolve

func resolveClipRoot() (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return appdirs.ClipRootFor(dirs), nil
}

func validateToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("run token is empty")
	}
	if strings.ContainsAny(token, `/\`) || token == "." || token == ".." {
		return fmt.Errorf("run token %q is not a plain name", token)
	}
	return nil
}

func resolveRunDir(token string) (string, error) {
	if err := validateToken(token); err != nil {
		return "", err
	}
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return appdirs.RunDirFor(dirs, token), nil
}

func resolveSourceVideoPath(token string) (string, error) {
	if err := validateToken(token); err != nil {
		return "", err
	}
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return appdirs.SourceVideoFor(dirs, token), nil
}

func resolveClipFilePath(token string, clipID int) (string, error) {
	runDir, err := resolveRunDir(token)
	if err != nil {
		return "", err
	}
	return filepath.Join(runDir, fmt.Sprintf("clip_%d.mp4", clipID)), nil
}

// resolveClipDownloadPath maps a rendered file onto the /api/file path space.
func resolveClipDownloadPath(localPath string) (string, error) {
	clipRoot, err := resolveClipRoot()
	if err != nil {
		return "", err
	}

	cleanedLocalPath := filepath.Clean(localPath)
	relPath, err := filepath.Rel(clipRoot, cleanedLocalPath)
	if err != nil {
		return "", err
	}
	if relPath == "." || relPath == "" {
		return "", fmt.Errorf("clip path %q is not a file path", localPath)
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("clip path %q is outside clip root %q", localPath, clipRoot)
	}
	return filepath.ToSlash(filepath.Join(appdirs.ClipRootName, relPath)), nil
}
