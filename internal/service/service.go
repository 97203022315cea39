package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"flight-forecast-backend/internal/advisor"
	"flight-forecast-backend/internal/cache"
	"flight-forecast-backend/internal/holiday"
	"flight-forecast-backend/internal/metrics"
	"flight-forecast-backend/internal/model"
	"flight-forecast-backend/internal/predictor"
	"flight-forecast-backend/internal/quotes"
	"flight-forecast-backend/internal/trend"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrTaskNotFound   = errors.New("task not found")
	ErrRetrainRunning = errors.New("retrain already running")
)

// Options service dependencies
type Options struct {
	ModelDir     string
	Dataset      predictor.DatasetSource
	Train        predictor.Options
	Cache        cache.Provider
	CacheTTL     time.Duration
	Quotes       quotes.Source
	TrendWorkers int
	Now          func() time.Time
	Logger       *zap.Logger
}

// Service fare prediction operations over the current model
type Service struct {
	modelDir string
	dataset  predictor.DatasetSource
	train    predictor.Options
	cache    cache.Provider
	cacheTTL time.Duration
	quotes   quotes.Source
	now      func() time.Time
	logger   *zap.Logger

	holder     predictor.Holder
	trends     *trend.Generator
	advisor    *advisor.Advisor
	tasks      *taskRegistry
	retraining atomic.Bool
}

// New nil cache uses an in-memory one; nil quotes uses the sample providers.
func New(opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewInMemoryProvider()
	}
	if opts.Quotes == nil {
		opts.Quotes = quotes.NewSampleSource(opts.Logger)
	}
	opts.Train.Now = opts.Now
	if opts.Train.Logger == nil {
		opts.Train.Logger = opts.Logger
	}

	s := &Service{
		modelDir: opts.ModelDir,
		dataset:  opts.Dataset,
		train:    opts.Train,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		quotes:   opts.Quotes,
		now:      opts.Now,
		logger:   opts.Logger.With(zap.String("component", "service")),
	}
	s.trends = trend.NewGenerator(opts.TrendWorkers, opts.Now, opts.Logger)
	s.advisor = advisor.New(s.trends, opts.Now)
	s.tasks = newTaskRegistry(s, opts.Now)
	return s
}

// Init loads or trains the model; nothing is served before it returns nil.
func (s *Service) Init(ctx context.Context) error {
	m, trained, err := predictor.LoadOrTrain(ctx, s.modelDir, s.dataset, s.train)
	if err != nil {
		return fmt.Errorf("initialize model: %w", err)
	}
	s.install(m)
	s.logger.Info("model ready", zap.String("run_id", m.RunID()), zap.Bool("trained", trained))
	return nil
}

// SetModel installs m directly.
func (s *Service) SetModel(m *predictor.TrainedModel) {
	s.install(m)
}

func (s *Service) install(m *predictor.TrainedModel) {
	s.holder.Set(m)
	info := m.Info()
	metrics.ObserveModel(info.Eval.MAE, info.Eval.R2, info.Rows)
}

// Ready reports whether a model is installed.
func (s *Service) Ready() bool {
	return s.holder.Ready()
}

// Now service clock
func (s *Service) Now() time.Time {
	return s.now()
}

// Predict prices one itinerary and explains the result.
func (s *Service) Predict(ctx context.Context, it model.Itinerary) (res model.PredictResult, err error) {
	defer observe(metrics.KindSingle, time.Now(), &err)

	m, err := s.holder.Current()
	if err != nil {
		return model.PredictResult{}, err
	}
	now := s.now()
	key := cache.Key("predict", m.RunID(), now.Format(model.DateLayout), it.Airline, it.SourceCity, it.DestinationCity,
		it.DepartureDate, it.DepartureTime, strconv.FormatFloat(it.JourneyDurationHours, 'f', -1, 64), strconv.Itoa(it.TotalStops))
	if s.cacheGet(ctx, key, &res) {
		return res, nil
	}

	res, err = s.predictOne(m, it, now)
	if err != nil {
		return model.PredictResult{}, err
	}
	s.cacheSet(ctx, key, res)
	return res, nil
}

func (s *Service) predictOne(m *predictor.TrainedModel, it model.Itinerary, now time.Time) (model.PredictResult, error) {
	if err := it.Validate(); err != nil {
		return model.PredictResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	dep, err := it.Departure(now.Location())
	if err != nil {
		return model.PredictResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	pred, err := m.PredictAt(it, now)
	if err != nil {
		return model.PredictResult{}, err
	}
	days := holiday.DaysBetween(now, dep)
	return model.PredictResult{
		Success:        true,
		PredictedPrice: pred.PredictedPrice,
		Confidence:     pred.Confidence,
		PriceRange:     pred.PriceRange,
		StdDeviation:   pred.StdDeviation,
		Recommendation: advisor.Recommend(pred, days),
		Factors:        advisor.Explain(it, dep, days, pred),
	}, nil
}

// BatchPredict prices every item; failed items are listed separately and do
// not fail the batch.
func (s *Service) BatchPredict(ctx context.Context, items []model.Itinerary) (res model.BatchResult, err error) {
	defer observe(metrics.KindBatch, time.Now(), &err)

	m, err := s.holder.Current()
	if err != nil {
		return model.BatchResult{}, err
	}
	now := s.now()
	res = model.BatchResult{Success: true, Predictions: []model.BatchItem{}}
	for i, it := range items {
		if err := ctx.Err(); err != nil {
			return model.BatchResult{}, err
		}
		item, err := s.batchItem(m, i, it, now)
		if err != nil {
			res.Failed = append(res.Failed, model.BatchFailure{Index: i, Error: err.Error()})
			s.logger.Warn("batch item failed", zap.Int("index", i), zap.Error(err))
			continue
		}
		res.Predictions = append(res.Predictions, item)
	}
	res.Count = len(res.Predictions)
	return res, nil
}

func (s *Service) batchItem(m *predictor.TrainedModel, i int, it model.Itinerary, now time.Time) (model.BatchItem, error) {
	if err := it.Validate(); err != nil {
		return model.BatchItem{}, err
	}
	pred, err := m.PredictAt(it, now)
	if err != nil {
		return model.BatchItem{}, err
	}
	return model.BatchItem{Index: i, Request: it, Prediction: pred}, nil
}

// Trend day-by-day predicted prices for a route.
func (s *Service) Trend(ctx context.Context, source, destination string, days int) (points []model.TrendPoint, err error) {
	defer observe(metrics.KindTrend, time.Now(), &err)

	if days == 0 {
		days = trend.DefaultHorizon
	}
	if days < 1 || days > trend.MaxHorizon {
		return nil, fmt.Errorf("%w: days_ahead must be within 1..%d", ErrInvalidInput, trend.MaxHorizon)
	}
	m, err := s.holder.Current()
	if err != nil {
		return nil, err
	}
	key := cache.Key("trend", m.RunID(), s.now().Format(model.DateLayout), source, destination, strconv.Itoa(days))
	if s.cacheGet(ctx, key, &points) {
		return points, nil
	}
	points, err = s.trends.Generate(ctx, m, source, destination, days)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, points)
	return points, nil
}

// Analyze booking advice for a caller-supplied price.
func (s *Service) Analyze(ctx context.Context, req model.AnalyzeRequest) (a model.Analysis, err error) {
	defer observe(metrics.KindAnalyze, time.Now(), &err)

	if req.CurrentPrice <= 0 {
		return model.Analysis{}, fmt.Errorf("%w: current_price must be > 0", ErrInvalidInput)
	}
	m, err := s.holder.Current()
	if err != nil {
		return model.Analysis{}, err
	}
	return s.advisor.Analyze(ctx, m, req.CurrentPrice, req.SourceCity, req.DestinationCity, req.DepartureDate)
}

// Compare checks live quotes for the route against the model.
func (s *Service) Compare(ctx context.Context, req model.CompareRequest) (c model.Comparison, err error) {
	defer observe(metrics.KindCompare, time.Now(), &err)

	if _, perr := time.Parse(model.DateLayout, req.DepartureDate); perr != nil {
		return model.Comparison{}, fmt.Errorf("%w: departure_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	m, err := s.holder.Current()
	if err != nil {
		return model.Comparison{}, err
	}
	qs, err := s.quotes.Search(ctx, req.Origin, req.Destination, req.DepartureDate)
	if err != nil {
		return model.Comparison{}, fmt.Errorf("search quotes: %w", err)
	}

	direction := advisor.DirectionStable
	if points, terr := s.trends.Generate(ctx, m, req.Origin, req.Destination, advisor.AnalysisHorizon); terr == nil {
		prices := make([]float64, len(points))
		for i, p := range points {
			prices[i] = float64(p.PredictedPrice)
		}
		direction = advisor.Direction(prices)
	} else {
		s.logger.Warn("route trend unavailable", zap.Error(terr))
	}
	return advisor.Compare(m, qs, s.now(), direction, s.logger), nil
}

// Catalog airlines and cities known to the current model
type Catalog struct {
	Airlines []string `json:"airlines"`
	Cities   []string `json:"cities"`
}

func (s *Service) Catalog() (Catalog, error) {
	m, err := s.holder.Current()
	if err != nil {
		return Catalog{}, err
	}
	return Catalog{Airlines: m.Airlines(), Cities: m.Cities()}, nil
}

// ModelInfo summary of the current model
func (s *Service) ModelInfo() (predictor.Info, error) {
	m, err := s.holder.Current()
	if err != nil {
		return predictor.Info{}, err
	}
	return m.Info(), nil
}

// Retrain rebuilds the dataset, trains, saves and swaps the model. Only one
// retrain runs at a time.
func (s *Service) Retrain(ctx context.Context) (predictor.Info, error) {
	if !s.retraining.CompareAndSwap(false, true) {
		return predictor.Info{}, ErrRetrainRunning
	}
	defer s.retraining.Store(false)
	return s.retrain(ctx)
}

// TriggerRetrain starts a retrain in the background.
func (s *Service) TriggerRetrain() error {
	if !s.retraining.CompareAndSwap(false, true) {
		return ErrRetrainRunning
	}
	go func() {
		defer s.retraining.Store(false)
		if _, err := s.retrain(context.Background()); err != nil {
			s.logger.Error("background retrain failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Service) retrain(ctx context.Context) (predictor.Info, error) {
	m, err := predictor.TrainFrom(ctx, s.dataset, s.train)
	if err != nil {
		return predictor.Info{}, err
	}
	if s.modelDir != "" {
		if err := m.Save(s.modelDir); err != nil {
			s.logger.Warn("save retrained model failed", zap.Error(err))
		}
	}
	s.install(m)
	s.logger.Info("model swapped", zap.String("run_id", m.RunID()))
	return m.Info(), nil
}

// Retraining reports whether a retrain is in progress.
func (s *Service) Retraining() bool {
	return s.retraining.Load()
}

func (s *Service) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cacheTTL <= 0 {
		return false
	}
	if err := s.cache.Get(ctx, key, dest); err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Debug("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Debug("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func observe(kind string, start time.Time, err *error) {
	status := "ok"
	if *err != nil {
		status = "error"
	}
	metrics.Predictions.WithLabelValues(kind, status).Inc()
	metrics.PredictionDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
