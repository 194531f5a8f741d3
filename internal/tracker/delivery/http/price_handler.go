package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"nickel-price-tracker/internal/tracker/dto"
	"nickel-price-tracker/internal/tracker/repository"
	"nickel-price-tracker/internal/tracker/scraper"
	"nickel-price-tracker/internal/tracker/service"
	"nickel-price-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	defaultPerPage = 30
	maxPerPage     = 100

	statsCacheKey = "prices:stats"
)

// PriceHandler handles HTTP requests for nickel prices.
type PriceHandler struct {
	priceRepo     repository.NickelPriceRepository
	scraperSvc    service.ScraperService
	logger        *logger.Logger
	statsCache    *cache.Cache
	scrapeLimiter *rate.Limiter
}

// NewPriceHandler creates a new PriceHandler. The on-demand scrape trigger is
// rate limited so operators cannot hammer the source site.
func NewPriceHandler(priceRepo repository.NickelPriceRepository, scraperSvc service.ScraperService, logger *logger.Logger) *PriceHandler {
	return &PriceHandler{
		priceRepo:     priceRepo,
		scraperSvc:    scraperSvc,
		logger:        logger,
		statsCache:    cache.New(5*time.Minute, 10*time.Minute),
		scrapeLimiter: rate.NewLimiter(rate.Every(time.Minute), 1),
	}
}

// RegisterRoutes registers the price routes to the Echo group.
func (h *PriceHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/prices", h.ListPrices)
	g.GET("/prices/latest", h.LatestPrice)
	g.GET("/prices/stats", h.PriceStats)
	g.POST("/scrape", h.TriggerScrape)
}

// ListPrices godoc
// @Summary List nickel prices
// @Description Get one page of nickel price records, newest date first
// @Tags prices
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Records per page" default(30)
// @Success 200 {object} dto.PriceListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /prices [get]
func (h *PriceHandler) ListPrices(c echo.Context) error {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(c, "per_page", defaultPerPage)
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	ctx := c.Request().Context()
	prices, err := h.priceRepo.List(ctx, page, perPage)
	if err != nil {
		h.logger.Error("Failed to list prices", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list prices"})
	}
	total, err := h.priceRepo.Count(ctx)
	if err != nil {
		h.logger.Error("Failed to count prices", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list prices"})
	}

	resp := dto.PriceListResponse{
		Data:    make([]dto.PriceRecord, 0, len(prices)),
		Page:    page,
		PerPage: perPage,
		Total:   total,
	}
	if total > 0 {
		resp.TotalPages = (total + int64(perPage) - 1) / int64(perPage)
	}
	for i := range prices {
		resp.Data = append(resp.Data, dto.NewPriceRecord(&prices[i]))
	}

	return c.JSON(http.StatusOK, resp)
}

// LatestPrice godoc
// @Summary Latest nickel price
// @Description Get the record with the most recent date, or null when empty
// @Tags prices
// @Produce json
// @Success 200 {object} dto.PriceRecord
// @Failure 500 {object} dto.ErrorResponse
// @Router /prices/latest [get]
func (h *PriceHandler) LatestPrice(c echo.Context) error {
	price, err := h.priceRepo.Latest(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get latest price", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get latest price"})
	}
	if price == nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, dto.NewPriceRecord(price))
}

// PriceStats godoc
// @Summary Nickel price statistics
// @Description Aggregate stats over records with a cash settlement price
// @Tags prices
// @Produce json
// @Success 200 {object} dto.StatsResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /prices/stats [get]
func (h *PriceHandler) PriceStats(c echo.Context) error {
	if cached, found := h.statsCache.Get(statsCacheKey); found {
		return c.JSON(http.StatusOK, cached)
	}

	stats, err := h.priceRepo.Stats(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get price stats", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get price stats"})
	}

	resp := dto.NewStatsResponse(stats)
	h.statsCache.Set(statsCacheKey, resp, cache.DefaultExpiration)
	return c.JSON(http.StatusOK, resp)
}

// TriggerScrape godoc
// @Summary Trigger a scrape run
// @Description Run the scrape pipeline once and report the batch row count
// @Tags scrape
// @Produce json
// @Success 200 {object} dto.ScrapeResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /scrape [post]
func (h *PriceHandler) TriggerScrape(c echo.Context) error {
	if !h.scrapeLimiter.Allow() {
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "Scrape already triggered recently"})
	}

	count, err := h.scraperSvc.RunOnce(c.Request().Context())
	if err != nil {
		h.logger.Error("On-demand scrape failed", logger.ErrorField(err))
		switch {
		case errors.Is(err, service.ErrFetchSource),
			errors.Is(err, scraper.ErrPriceTableNotFound),
			errors.Is(err, scraper.ErrTableBodyMissing):
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "Could not fetch or parse source page"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Could not persist price records"})
		}
	}

	h.statsCache.Flush()
	return c.JSON(http.StatusOK, dto.ScrapeResponse{Status: "ok", Rows: count})
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
