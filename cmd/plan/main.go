package main

import (
	"delivery-route-optimizer/internal/adapters/repositories"
	"delivery-route-optimizer/internal/adapters/routing"
	"delivery-route-optimizer/internal/api/dto"
	"delivery-route-optimizer/internal/config"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/services"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	depotFlag      string
	stopsFile      string
	strategy       string
	modeFlag       string
	serviceMinutes float64
	departAt       string
	departNow      bool
	noTraffic      bool
	pretty         bool
	verbose        bool
)

var rootCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a delivery route from the command line",
	Long: `Order a list of delivery stops from a depot and print the assembled route
as a GeoJSON FeatureCollection. Segments are routed through OpenRouteService
when ORS_API_KEY is set and estimated as straight lines otherwise.`,
	SilenceUsage: true,
	RunE:         runPlan,
}

func init() {
	rootCmd.Flags().StringVarP(&depotFlag, "depot", "d", "", `Depot position as "lon,lat"`)
	rootCmd.Flags().StringVarP(&stopsFile, "stops-file", "f", "", "Stops file (.json seeds or one \"lon,lat\" per line)")
	rootCmd.Flags().StringVarP(&strategy, "strategy", "s", services.StrategyNearestNeighbor, "Ordering strategy: nearest_neighbor or external")
	rootCmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "Travel mode (Truck, Car, Scooter, Pedestrian)")
	rootCmd.Flags().Float64Var(&serviceMinutes, "service-minutes", services.DefaultServiceTime.Minutes(), "Service time per stop in minutes (0-15)")
	rootCmd.Flags().StringVar(&departAt, "depart-at", "", "Departure time (RFC3339) for traffic-aware routing")
	rootCmd.Flags().BoolVar(&departNow, "depart-now", false, "Use traffic for a departure now (the default)")
	rootCmd.Flags().BoolVar(&noTraffic, "no-traffic", false, "Route without traffic data")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Indent JSON output")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")

	rootCmd.MarkFlagRequired("depot")
	rootCmd.MarkFlagRequired("stops-file")
	rootCmd.MarkFlagsMutuallyExclusive("depart-at", "depart-now", "no-traffic")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runPlan(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	if verbose {
		logger, err := obs.NewLogger("development", "")
		if err != nil {
			return err
		}
		defer logger.Sync()
		zap.ReplaceGlobals(logger)
	}

	depot, err := parseDepot(depotFlag)
	if err != nil {
		return err
	}

	stops, issues, err := repositories.LoadStops(stopsFile)
	if err != nil {
		return err
	}
	for _, issue := range issues {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipping line %d (%q): %s\n", issue.Line, issue.Text, issue.Reason)
	}

	mode, err := resolveMode(modeFlag)
	if err != nil {
		return err
	}

	traffic, err := resolveTraffic(departAt, noTraffic)
	if err != nil {
		return err
	}

	planner, err := newPlanner()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	route, err := planner.OptimizeRoute(ctx, services.OptimizeRequest{
		Depot:       &depot,
		Stops:       stops,
		Strategy:    strategy,
		Mode:        mode,
		Traffic:     traffic,
		ServiceTime: services.ClampServiceTime(time.Duration(serviceMinutes * float64(time.Minute))),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(dto.RouteFeatureCollection(route))
}

func newPlanner() (*services.Planner, error) {
	metrics, err := obs.NewCollector(prometheus.NewRegistry())
	if err != nil {
		return nil, err
	}

	planner := &services.Planner{Metrics: metrics}

	key := strings.TrimSpace(os.Getenv("ORS_API_KEY"))
	if key == "" {
		zap.L().Warn("ORS_API_KEY is not set; using straight-line estimates")
		return planner, nil
	}

	timeout, err := time.ParseDuration(config.Get("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}

	ors, err := routing.NewORSProvider(routing.ORSConfig{
		APIKey:  key,
		BaseURL: config.Get("ORS_BASE_URL", routing.DefaultORSBaseURL),
		Timeout: timeout,
		Metrics: metrics,
	})
	if err != nil {
		return nil, err
	}

	planner.Routing = ors
	planner.Optimizer = ors
	return planner, nil
}

// parseDepot reads a "lon,lat" pair with the same rules as manual stop input.
func parseDepot(s string) (domain.Stop, error) {
	parsed, issues := domain.ParseStopLines(s, 0, "")
	if len(issues) > 0 {
		return domain.Stop{}, fmt.Errorf("depot %q: %s", s, issues[0].Reason)
	}
	if len(parsed) != 1 {
		return domain.Stop{}, fmt.Errorf("depot %q: expected \"lon,lat\"", s)
	}

	c := parsed[0].Coordinates
	if c.Lon < -180 || c.Lon > 180 || c.Lat < -90 || c.Lat > 90 {
		return domain.Stop{}, fmt.Errorf("depot %q: coordinates out of range", s)
	}
	return domain.NewDepot(c), nil
}

func resolveMode(s string) (domain.TravelMode, error) {
	if s == "" {
		s = config.Get("DEFAULT_TRAVEL_MODE", string(domain.TravelModeDrivingHeavy))
	}
	return domain.ParseTravelMode(s)
}

// resolveTraffic departs now unless a departure time is given or traffic is
// turned off.
func resolveTraffic(at string, off bool) (domain.TrafficParams, error) {
	switch {
	case off:
		return domain.NoTraffic(), nil
	case at != "":
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return domain.TrafficParams{}, fmt.Errorf("depart-at: %w", err)
		}
		return domain.DepartAt(t), nil
	}
	return domain.DepartNow(), nil
}
