package repository

import (
	"beat0050/internal/domain"
	"beat0050/internal/util"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TwseRepository reads quotes from the Taiwan Stock Exchange open endpoints.
// Free and official, so it sits first in the fallback chain.
type TwseRepository interface {
	GetDailyClose(ctx context.Context, symbol string, date time.Time) (*decimal.Decimal, error)
	GetLatestPrice(ctx context.Context, symbol string) (*domain.AssetPrice, error)
}

func NewTwseRepository(client *http.Client) TwseRepository {
	if client == nil {
		client = http.DefaultClient
	}
	return &twseRepositoryHandler{
		Client: client,
	}
}

type twseRepositoryHandler struct {
	Client *http.Client
}

type twseStockDayResponse struct {
	Stat string     `json:"stat"`
	Data [][]string `json:"data"`
}

const twseCloseColumn = 6

// GetDailyClose pulls the STOCK_DAY monthly table and picks out the
// requested day. The endpoint takes ROC-calendar date params and returns
// ROC-formatted row dates.
func (h twseRepositoryHandler) GetDailyClose(ctx context.Context, symbol string, date time.Time) (*decimal.Decimal, error) {
	dateParam := fmt.Sprintf("%d%02d01", date.Year()-1911, int(date.Month()))
	url := fmt.Sprintf(
		"https://www.twse.com.tw/exchangeReport/STOCK_DAY?response=json&date=%s&stockNo=%s",
		dateParam,
		symbol,
	)

	body, err := h.getBytes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch STOCK_DAY for %s: %w", symbol, err)
	}

	response := twseStockDayResponse{}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse STOCK_DAY response for %s: %w", symbol, err)
	}
	if response.Stat != "OK" || len(response.Data) == 0 {
		return nil, nil
	}

	targetDate := util.ROCDate(date)
	for _, row := range response.Data {
		if len(row) <= twseCloseColumn || row[0] != targetDate {
			continue
		}
		closeStr := strings.ReplaceAll(row[twseCloseColumn], ",", "")
		price, err := decimal.NewFromString(closeStr)
		if err != nil {
			return nil, fmt.Errorf("unexpected close price %q for %s on %s: %w", row[twseCloseColumn], symbol, targetDate, err)
		}
		return &price, nil
	}

	// no trade that day (holiday or unlisted)
	return nil, nil
}

type twseStockInfoResponse struct {
	MsgArray []struct {
		Z string `json:"z"`
		C string `json:"c"`
	} `json:"msgArray"`
}

// GetLatestPrice reads the intraday snapshot endpoint. The last-deal price
// (z) wins; outside trading hours it falls back to the prior close (c).
func (h twseRepositoryHandler) GetLatestPrice(ctx context.Context, symbol string) (*domain.AssetPrice, error) {
	url := fmt.Sprintf("https://mis.twse.com.tw/stock/api/getStockInfo.jsp?ex_ch=tse_%s.tw", symbol)

	body, err := h.getBytes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stock info for %s: %w", symbol, err)
	}

	response := twseStockInfoResponse{}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse stock info response for %s: %w", symbol, err)
	}
	if len(response.MsgArray) == 0 {
		return nil, nil
	}

	priceStr := response.MsgArray[0].Z
	if _, err := strconv.ParseFloat(priceStr, 64); err != nil {
		priceStr = response.MsgArray[0].C
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, nil
	}

	return &domain.AssetPrice{
		Symbol: symbol,
		Price:  price,
		Date:   util.TruncateToDay(time.Now().UTC()),
	}, nil
}

func (h twseRepositoryHandler) getBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	response, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("received status code %d and failed to read body: %w", response.StatusCode, err)
	}
	if response.StatusCode != 200 {
		return nil, fmt.Errorf("failed with status code %d: %s", response.StatusCode, string(responseBytes))
	}

	return responseBytes, nil
}
