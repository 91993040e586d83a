// SEC EDGAR XBRL company-facts integration.
// API Documentation: https://www.sec.gov/edgar/sec-api-documentation
package ingest

import (
	"context"
	"dcf_valuation/pkg/models"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// SEC EDGAR API endpoints
	SECCompanyFactsURL = "https://data.sec.gov/api/xbrl/companyfacts/CIK%s.json"
	SECTickersURL      = "https://www.sec.gov/files/company_tickers.json"

	// Required User-Agent per SEC guidelines
	DefaultUserAgent = "DCFValuation/1.0 (contact@example.com)"

	// Annual facts must cover roughly a fiscal year.
	minAnnualDays = 330
)

// Concept lists, in order of preference.
var (
	conceptEBIT         = []string{"OperatingIncomeLoss"}
	conceptTax          = []string{"IncomeTaxExpenseBenefit"}
	conceptDepreciation = []string{"DepreciationDepletionAndAmortization", "DepreciationAndAmortization", "DepreciationAmortizationAndAccretionNet"}
	conceptInterest     = []string{"InterestExpense", "InterestExpenseNonoperating", "InterestExpenseDebt"}
	conceptLongTermDebt = []string{"LongTermDebtNoncurrent", "LongTermDebt"}
	conceptShortTerm    = []string{"ShortTermBorrowings", "LongTermDebtCurrent"}
	conceptCash         = []string{"CashAndCashEquivalentsAtCarryingValue"}
	conceptCapex        = []string{"PaymentsToAcquirePropertyPlantAndEquipment"}
	conceptShares       = "EntityCommonStockSharesOutstanding"
)

// =============================================================================
// SEC EDGAR DATA TYPES
// =============================================================================

// CompanyFacts is the companyfacts response: taxonomy -> concept -> facts.
type CompanyFacts struct {
	CIK        int                               `json:"cik"`
	EntityName string                            `json:"entityName"`
	Facts      map[string]map[string]ConceptFact `json:"facts"`
}

// ConceptFact holds every reported value of one XBRL concept, keyed by unit.
type ConceptFact struct {
	Label string            `json:"label"`
	Units map[string][]Fact `json:"units"`
}

// Fact is a single reported value.
type Fact struct {
	Start string  `json:"start,omitempty"` // duration facts only
	End   string  `json:"end"`
	Val   float64 `json:"val"`
	FY    int     `json:"fy"`
	FP    string  `json:"fp"`   // "FY", "Q1", ...
	Form  string  `json:"form"` // "10-K", "10-Q", ...
	Filed string  `json:"filed"`
}

// =============================================================================
// SEC EDGAR CLIENT
// =============================================================================

// EDGARClient handles SEC EDGAR API requests.
type EDGARClient struct {
	httpClient  *http.Client
	userAgent   string
	factsURL    string
	tickersURL  string

	mu          sync.Mutex // guards tickerCache
	tickerCache map[string]string
}

// NewEDGARClient creates a new SEC EDGAR API client. An empty userAgent
// falls back to DefaultUserAgent.
func NewEDGARClient(userAgent string) *EDGARClient {
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}
	return &EDGARClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent:  userAgent,
		factsURL:   SECCompanyFactsURL,
		tickersURL: SECTickersURL,
	}
}

func (c *EDGARClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// SEC requires User-Agent header
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("SEC API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SEC API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// LookupCIK finds the zero-padded CIK for a ticker symbol using the SEC
// ticker mapping file. The mapping is cached for the client's lifetime.
// Safe for concurrent use.
func (c *EDGARClient) LookupCIK(ctx context.Context, ticker string) (string, error) {
	ticker = NormalizeTicker(ticker)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tickerCache == nil {
		body, err := c.get(ctx, c.tickersURL)
		if err != nil {
			return "", fmt.Errorf("failed to fetch ticker mapping: %w", err)
		}

		// Response structure: { "0": {"cik_str": 320193, "ticker": "AAPL", "title": "..."}, ... }
		var mapping map[string]struct {
			CIK    int    `json:"cik_str"`
			Ticker string `json:"ticker"`
			Title  string `json:"title"`
		}
		if err := json.Unmarshal(body, &mapping); err != nil {
			return "", fmt.Errorf("failed to parse ticker mapping: %w", err)
		}

		cache := make(map[string]string, len(mapping))
		for _, entry := range mapping {
			cache[strings.ToUpper(entry.Ticker)] = fmt.Sprintf("%010d", entry.CIK)
		}
		c.tickerCache = cache
	}

	cik, ok := c.tickerCache[ticker]
	if !ok {
		return "", fmt.Errorf("%w: ticker %s not in SEC database", ErrNotFound, ticker)
	}
	return cik, nil
}

// FetchCompanyFacts retrieves all XBRL facts filed by a company.
//
// CIK should be zero-padded to 10 digits (e.g., "0000320193" for Apple).
// If not padded, this function will pad it automatically.
func (c *EDGARClient) FetchCompanyFacts(ctx context.Context, cik string) (*CompanyFacts, error) {
	cik = fmt.Sprintf("%010s", strings.TrimLeft(cik, "0"))

	body, err := c.get(ctx, fmt.Sprintf(c.factsURL, cik))
	if err != nil {
		return nil, err
	}

	var facts CompanyFacts
	if err := json.Unmarshal(body, &facts); err != nil {
		return nil, fmt.Errorf("failed to parse SEC response: %w", err)
	}
	return &facts, nil
}

// =============================================================================
// FACT SELECTION
// =============================================================================

// LatestAnnual returns the most recent fiscal-year 10-K value for the first
// concept in the list that has one. Duration facts must span about a year,
// which drops quarterly values that 10-K filings also carry.
func (f *CompanyFacts) LatestAnnual(taxonomy string, concepts []string) (Fact, bool) {
	for _, concept := range concepts {
		cf, ok := f.Facts[taxonomy][concept]
		if !ok {
			continue
		}
		candidates := make([]Fact, 0)
		for _, fact := range cf.Units["USD"] {
			if fact.Form != "10-K" || fact.FP != "FY" {
				continue
			}
			if fact.Start != "" && !spansYear(fact.Start, fact.End) {
				continue
			}
			candidates = append(candidates, fact)
		}
		if latest, ok := latest(candidates); ok {
			return latest, true
		}
	}
	return Fact{}, false
}

// LatestShares returns the most recent shares-outstanding fact of any form.
func (f *CompanyFacts) LatestShares() (Fact, bool) {
	cf, ok := f.Facts["dei"][conceptShares]
	if !ok {
		return Fact{}, false
	}
	return latest(cf.Units["shares"])
}

// latest picks the fact with the latest end date, breaking ties by filing date.
func latest(facts []Fact) (Fact, bool) {
	if len(facts) == 0 {
		return Fact{}, false
	}
	sorted := append([]Fact(nil), facts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].End != sorted[j].End {
			return sorted[i].End > sorted[j].End
		}
		return sorted[i].Filed > sorted[j].Filed
	})
	return sorted[0], true
}

func spansYear(start, end string) bool {
	s, err1 := time.Parse("2006-01-02", start)
	e, err2 := time.Parse("2006-01-02", end)
	if err1 != nil || err2 != nil {
		return false
	}
	return e.Sub(s) >= minAnnualDays*24*time.Hour
}

// Snapshot maps company facts onto a fundamentals snapshot. Market data
// (price, beta, market cap) is not part of SEC filings and stays nil.
func (f *CompanyFacts) Snapshot(ticker string) models.FundamentalsSnapshot {
	snap := models.FundamentalsSnapshot{
		Ticker:      ticker,
		CompanyName: f.EntityName,
		Source:      "edgar",
	}

	pick := func(concepts []string) *float64 {
		fact, ok := f.LatestAnnual("us-gaap", concepts)
		if !ok {
			return nil
		}
		if fact.End > snap.AsOf {
			snap.AsOf = fact.End
		}
		return models.Float(fact.Val)
	}

	snap.EBIT = pick(conceptEBIT)
	snap.TaxExpense = pick(conceptTax)
	snap.Depreciation = pick(conceptDepreciation)
	snap.InterestExpense = pick(conceptInterest)
	snap.LongTermDebt = pick(conceptLongTermDebt)
	snap.ShortTermDebt = pick(conceptShortTerm)
	snap.Cash = pick(conceptCash)
	snap.Capex = models.Value(pick(conceptCapex))

	if shares, ok := f.LatestShares(); ok {
		snap.SharesOutstanding = models.Float(shares.Val)
	}

	return snap.Normalize()
}

// =============================================================================
// SOURCE
// =============================================================================

// EDGARSource implements Source on top of SEC company facts.
type EDGARSource struct {
	client *EDGARClient
}

// NewEDGARSource creates a Source backed by the given client.
func NewEDGARSource(client *EDGARClient) *EDGARSource {
	return &EDGARSource{client: client}
}

// Fetch resolves the ticker to a CIK and builds a snapshot from its facts.
func (s *EDGARSource) Fetch(ctx context.Context, ticker string) (*models.FundamentalsSnapshot, error) {
	ticker = NormalizeTicker(ticker)

	cik, err := s.client.LookupCIK(ctx, ticker)
	if err != nil {
		return nil, err
	}

	facts, err := s.client.FetchCompanyFacts(ctx, cik)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company facts for %s: %w", ticker, err)
	}

	snap := facts.Snapshot(ticker)
	return &snap, nil
}
