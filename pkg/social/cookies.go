package social

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"clipz-ai/internal/types"
	apperrors "clipz-ai/pkg/errors"
)

// Cookie is one entry of an EditThisCookie style JSON export.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expirationDate"`
	HttpOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

type CookieStatus struct {
	Platform  types.Platform `json:"platform"`
	Connected bool           `json:"connected"`
	Count     int            `json:"count"`
	UpdatedAt int64          `json:"updatedAt,omitempty"`
}

// CookieStore keeps one cookie file per platform under dir. A platform is
// connected when its file exists and holds at least one cookie.
type CookieStore struct {
	dir string
}

func NewCookieStore(dir string) *CookieStore {
	return &CookieStore{dir: dir}
}

func (s *CookieStore) Path(platform types.Platform) string {
	return filepath.Join(s.dir, string(platform)+".json")
}

func parseCookies(data []byte) ([]Cookie, error) {
	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, apperrors.WrapWithDetail(apperrors.CodeInvalidParams, "cookie 文件格式错误 Invalid cookie file", "expected a JSON array of cookies", err)
	}
	if len(cookies) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidParams, "cookie 文件为空 Cookie file is empty")
	}
	return cookies, nil
}

// Save validates data and stores it as the platform's cookie file.
func (s *CookieStore) Save(platform types.Platform, data []byte) (CookieStatus, error) {
	if !Supported(platform) {
		return CookieStatus{}, apperrors.ErrUnsupportedPlatform
	}
	cookies, err := parseCookies(data)
	if err != nil {
		return CookieStatus{}, err
	}
	if err = os.MkdirAll(s.dir, 0o700); err != nil {
		return CookieStatus{}, apperrors.Wrap(apperrors.CodeFileWriteError, "create cookies dir failed", err)
	}
	if err = os.WriteFile(s.Path(platform), data, 0o600); err != nil {
		return CookieStatus{}, apperrors.Wrap(apperrors.CodeFileWriteError, "write cookies failed", err)
	}
	return CookieStatus{Platform: platform, Connected: true, Count: len(cookies), UpdatedAt: time.Now().Unix()}, nil
}

func (s *CookieStore) Load(platform types.Platform) ([]Cookie, error) {
	data, err := os.ReadFile(s.Path(platform))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.ErrNotConnected
		}
		return nil, apperrors.Wrap(apperrors.CodeNotConnected, apperrors.ErrNotConnected.Message, err)
	}
	return parseCookies(data)
}

func (s *CookieStore) Status(platform types.Platform) CookieStatus {
	status := CookieStatus{Platform: platform}
	info, err := os.Stat(s.Path(platform))
	if err != nil {
		return status
	}
	cookies, err := s.Load(platform)
	if err != nil {
		return status
	}
	status.Connected = true
	status.Count = len(cookies)
	status.UpdatedAt = info.ModTime().Unix()
	return status
}

func (s *CookieStore) Delete(platform types.Platform) error {
	if err := os.Remove(s.Path(platform)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
