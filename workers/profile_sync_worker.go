// workers/profile_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"wealthplay-service/models"
	"wealthplay-service/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// mirroredProfile matches the JSON the auth service's public profile feed
// returns.
type mirroredProfile struct {
	ExternalID string    `json:"external_id"`
	Username   string    `json:"username"`
	AvatarURL  string    `json:"profile_picture_url"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProfileSyncClient pulls changed profiles from the auth service and
// mirrors them into user_mirrors.
type ProfileSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewProfileSyncClient(db *gorm.DB) *ProfileSyncClient {
	baseURL := os.Getenv("AUTH_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("AUTH_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("WEALTHPLAY_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("WEALTHPLAY_SERVICE_TOKEN environment variable is required for profile sync")
	}

	return &ProfileSyncClient{
		BaseURL:    baseURL,
		Token:      token,
		DB:         db,
		HTTPClient: utils.HTTPClient,
	}
}

func (c *ProfileSyncClient) GetChangedProfiles(ctx context.Context, since time.Time) ([]mirroredProfile, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/public/profiles", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call auth service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("auth service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Profiles []mirroredProfile `json:"profiles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode auth service response: %w", err)
	}
	return response.Profiles, nil
}

// PollProfiles mirrors profile changes on a fixed interval until the
// context is canceled. The sync window only advances after a successful
// upsert, so a failed tick retries the same window.
func PollProfiles(ctx context.Context, client *ProfileSyncClient, pollInterval time.Duration) {
	log.Println("Starting profile mirror polling...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Profile mirror polling stopped.")
			return
		case <-ticker.C:
			tickTime := time.Now().UTC()

			profiles, err := client.GetChangedProfiles(ctx, lastSyncTime)
			if err != nil {
				log.Printf("Error polling profiles: %v", err)
				continue
			}
			if len(profiles) == 0 {
				continue
			}

			mirrors := make([]models.UserMirror, 0, len(profiles))
			for _, p := range profiles {
				if p.ExternalID == "" {
					continue
				}
				mirrors = append(mirrors, models.UserMirror{
					ID:         uuid.NewString(),
					ExternalID: p.ExternalID,
					Username:   p.Username,
					AvatarURL:  p.AvatarURL,
				})
			}
			if len(mirrors) == 0 {
				continue
			}

			if err := client.DB.Clauses(
				clause.OnConflict{
					Columns:   []clause.Column{{Name: "external_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"username", "avatar_url", "updated_at"}),
				},
			).Create(&mirrors).Error; err != nil {
				log.Printf("Failed to upsert %d profile mirror(s): %v", len(mirrors), err)
				continue
			}

			lastSyncTime = tickTime
			log.Printf("Mirrored %d profile change(s)", len(mirrors))
		}
	}
}
