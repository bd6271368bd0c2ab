package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"

	"github.com/missionMeteora/mandrill"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

func New(loc string) (*Config, error) {
	var c Config

	f, err := os.Open(loc)
	if err != nil {
		log.Println("Config error", err)
		return nil, err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&c); err != nil {
		log.Println("Config error", err)
		return nil, err
	}

	if c.Bucket.Deal == "" || c.Bucket.Token == "" || c.Bucket.Otp == "" || c.Bucket.Audit == "" {
		return nil, ErrInvalidConfig
	}
	c.Bucket.All = []string{c.Bucket.Deal, c.Bucket.Token, c.Bucket.Otp, c.Bucket.Audit}

	return &c, nil
}

type Config struct {
	Host string `json:"host"`
	Port string `json:"port"`

	Sandbox bool `json:"sandbox"`

	DBPath string `json:"dbPath"`
	DBName string `json:"dbName"`

	// DashURL is the base the emailed action links point at.
	DashURL string `json:"dashUrl"`

	// AdminEmail gets alert mail on side effect failures.
	AdminEmail string `json:"adminEmail"`

	// ApiKeys maps an x-apikey header value to a creator id. The admin
	// key maps to "admin" and may touch any deal.
	ApiKeys map[string]string `json:"apiKeys"`

	Mandrill struct {
		APIKey     string `json:"apiKey"`
		SubAccount string `json:"subAccount"`
		FromEmail  string `json:"fromEmail"`
		FromName   string `json:"fromName"`
	} `json:"mandrill"`

	Storage struct {
		Endpoint string `json:"endpoint"`
		Key      string `json:"key"`
		Bucket   string `json:"bucket"`
		// LocalDir is used instead of the endpoint in sandbox mode.
		LocalDir string `json:"localDir"`
	} `json:"storage"`

	PDF struct {
		Endpoint string `json:"endpoint"`
		Key      string `json:"key"`
	} `json:"pdf"`

	Bucket struct {
		Deal  string   `json:"deal"`
		Token string   `json:"token"`
		Otp   string   `json:"otp"`
		Audit string   `json:"audit"`
		All   []string `json:"-"`
	} `json:"bucket"`

	mailClient *mandrill.Client
}

func (c *Config) MailClient() *mandrill.Client {
	if c.mailClient == nil && c.Mandrill.APIKey != "" {
		c.mailClient = mandrill.New(c.Mandrill.APIKey, c.Mandrill.SubAccount, c.Mandrill.FromEmail, c.Mandrill.FromName)
	}
	return c.mailClient
}

// ReplyMailClient is the client used for deal-facing mail (negotiation
// links, OTP codes); kept separate from MailClient so ops alerts can use
// a different subaccount later.
func (c *Config) ReplyMailClient() *mandrill.Client {
	return c.MailClient()
}

func (c *Config) CreatorForKey(key string) string {
	if key == "" {
		return ""
	}
	return c.ApiKeys[key]
}
