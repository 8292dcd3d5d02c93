package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/motodiag/internal/models"
	"github.com/motodiag/internal/reminder"
	"github.com/motodiag/internal/stats"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds a client from the environment. MOTODIAG_API_TOKEN comes
// from the login command.
func NewClient() (*Client, error) {
	baseURL := os.Getenv("MOTODIAG_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	token := os.Getenv("MOTODIAG_API_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("MOTODIAG_API_TOKEN environment variable is not set (run 'motodiag login')")
	}

	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Login exchanges the operator credentials for a session token without an
// existing client.
func Login(username, password string) (string, error) {
	baseURL := os.Getenv("MOTODIAG_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(baseURL+"/api/v1/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) ListReports(query string) ([]models.Report, error) {
	endpoint := "/api/v1/reports"
	if query != "" {
		endpoint += "?q=" + url.QueryEscape(query)
	}
	var reports []models.Report
	if err := c.get(endpoint, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (c *Client) GetReport(id string) (*models.Report, error) {
	var r models.Report
	if err := c.get("/api/v1/reports/"+id, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) DeleteReport(id string) error {
	return c.delete("/api/v1/reports/" + id + "?confirm=true")
}

func (c *Client) ExportReports() ([]byte, error) {
	return c.raw("/api/v1/reports/export")
}

func (c *Client) ImportReports(data []byte) (int, error) {
	return c.importCollection("/api/v1/reports/import", data)
}

// InspectionView is a listed inspection with its clock-derived state.
type InspectionView struct {
	models.Inspection
	State models.DisplayState `json:"state"`
}

func (c *Client) ListInspections(query string) ([]InspectionView, error) {
	endpoint := "/api/v1/inspections"
	if query != "" {
		endpoint += "?q=" + url.QueryEscape(query)
	}
	var inspections []InspectionView
	if err := c.get(endpoint, &inspections); err != nil {
		return nil, err
	}
	return inspections, nil
}

func (c *Client) GetInspectionDetails(id string) (string, error) {
	var out struct {
		Details string `json:"details"`
	}
	if err := c.get("/api/v1/inspections/"+id, &out); err != nil {
		return "", err
	}
	return out.Details, nil
}

func (c *Client) CompleteInspection(id string) error {
	return c.do(http.MethodPut, "/api/v1/inspections/"+id+"/complete", nil, nil)
}

func (c *Client) DeleteInspection(id string) error {
	return c.delete("/api/v1/inspections/" + id + "?confirm=true")
}

func (c *Client) ExportInspections() ([]byte, error) {
	return c.raw("/api/v1/inspections/export")
}

func (c *Client) ImportInspections(data []byte) (int, error) {
	return c.importCollection("/api/v1/inspections/import", data)
}

func (c *Client) ListReminders() ([]reminder.Entry, error) {
	var entries []reminder.Entry
	if err := c.get("/api/v1/reminders", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) GetStats(period string) (*stats.Summary, error) {
	endpoint := "/api/v1/stats"
	if period != "" {
		endpoint += "?period=" + url.QueryEscape(period)
	}
	var summary stats.Summary
	if err := c.get(endpoint, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) GetStatsPost() (string, error) {
	var out struct {
		Post string `json:"post"`
	}
	if err := c.get("/api/v1/stats/post", &out); err != nil {
		return "", err
	}
	return out.Post, nil
}

// Settings mirrors the API settings payload.
type Settings struct {
	ReminderHours int    `json:"reminder_hours"`
	Theme         string `json:"theme"`
}

func (c *Client) GetSettings() (*Settings, error) {
	var s Settings
	if err := c.get("/api/v1/settings", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) SetReminderHours(hours int) error {
	body := map[string]int{"reminder_hours": hours}
	return c.do(http.MethodPut, "/api/v1/settings", body, nil)
}

func (c *Client) SetTheme(theme string) error {
	body := map[string]string{"theme": theme}
	return c.do(http.MethodPut, "/api/v1/settings", body, nil)
}

func (c *Client) ExportSettings() ([]byte, error) {
	return c.raw("/api/v1/settings/export")
}

func (c *Client) ImportSettings(data []byte) error {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/settings/import", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

func (c *Client) ClearAllData() error {
	return c.delete("/api/v1/data?confirm=true")
}

func (c *Client) importCollection(endpoint string, data []byte) (int, error) {
	var out struct {
		Imported int `json:"imported"`
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, apiError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.Imported, nil
}

func (c *Client) get(endpoint string, out interface{}) error {
	return c.do(http.MethodGet, endpoint, nil, out)
}

func (c *Client) delete(endpoint string) error {
	return c.do(http.MethodDelete, endpoint, nil, nil)
}

func (c *Client) do(method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) raw(endpoint string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	return io.ReadAll(resp.Body)
}

func apiError(resp *http.Response) error {
	var out struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err == nil && out.Error != "" {
		if out.Message != "" {
			return fmt.Errorf("%s: %s", out.Error, out.Message)
		}
		return fmt.Errorf("%s", out.Error)
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode)
}
