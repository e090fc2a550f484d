package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/consistency"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/layout"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/repository/postgresql"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/service"
)

const jobTimeout = 5 * time.Minute

func templatesCmd(a *app) *cobra.Command {
	var (
		req      layout.Request
		template string
		format   string
	)
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Generate layout templates for the given slot counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gen := layout.NewGenerator(a.log)
			svc := service.NewLayoutService(gen, layout.NewCatalog(gen, layout.DefaultCategories(), a.log), nil, a.cfg.DefaultPricePerHour, a.log)

			var layouts []*domain.Layout
			if template != "" {
				l, err := svc.Generate(template, req)
				if err != nil {
					return err
				}
				layouts = []*domain.Layout{l}
			} else {
				all, err := svc.Templates(cmd.Context(), req)
				if err != nil {
					return err
				}
				layouts = all
			}
			return writeLayouts(cmd.OutOrStdout(), layouts, format)
		},
	}
	cmd.Flags().IntVar(&req.CarSlots, "cars", 0, "Number of car slots")
	cmd.Flags().IntVar(&req.BikeSlots, "bikes", 0, "Number of bike slots")
	cmd.Flags().Float64Var(&req.PricePerHour, "price", 0, "Price per hour (defaults to default_price_per_hour)")
	cmd.Flags().StringVar(&template, "template", "", "Generate a single template by id")
	cmd.Flags().StringVar(&format, "format", "ascii", "Output format: ascii or json")
	return cmd
}

func writeLayouts(w io.Writer, layouts []*domain.Layout, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(layouts)
	case "ascii":
		for _, l := range layouts {
			if _, err := io.WriteString(w, renderASCII(l)+"\n"); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

func checkLayoutCmd(a *app) *cobra.Command {
	var (
		propertyID int
		file       string
		cars       int
		bikes      int
	)
	cmd := &cobra.Command{
		Use:   "check-layout",
		Short: "Validate a stored or exported layout against declared slot counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var p *domain.Property
			switch {
			case file != "":
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				p = &domain.Property{Name: file, CarSlots: cars, BikeSlots: bikes, LayoutData: data}
			case propertyID > 0:
				db, err := a.openDB()
				if err != nil {
					return err
				}
				defer db.Close()
				p, err = postgresql.NewPgPropertyRepository(db).FindByID(cmd.Context(), propertyID)
				if err != nil {
					return fmt.Errorf("load property %d: %w", propertyID, err)
				}
			default:
				return fmt.Errorf("either --property or --file is required")
			}

			out := struct {
				Report   *consistency.Report   `json:"report"`
				Analysis *consistency.Analysis `json:"analysis"`
			}{consistency.Validate(p), consistency.Analyze(p)}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}
			if !out.Report.IsValid {
				return fmt.Errorf("%s", out.Report.Summary)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&propertyID, "property", 0, "Property id to load from the database")
	cmd.Flags().StringVar(&file, "file", "", "Layout JSON file to check instead of a stored property")
	cmd.Flags().IntVar(&cars, "cars", 0, "Declared car slots when using --file")
	cmd.Flags().IntVar(&bikes, "bikes", 0, "Declared bike slots when using --file")
	return cmd
}

func backfillSlotsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill-slots",
		Short: "Create legacy slot rows for approved properties that have none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withServices(cmd.Context(), func(ctx context.Context, props *service.PropertyService, _ *service.BookingService) error {
				n, err := props.BackfillLegacySlots(ctx)
				if err != nil {
					return err
				}
				a.log.Info().Int("properties", n).Msg("Backfill complete")
				return nil
			})
		},
	}
}

func releaseExpiredCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "release-expired",
		Short: "Complete bookings past their end time and free their slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withServices(cmd.Context(), func(ctx context.Context, _ *service.PropertyService, bookings *service.BookingService) error {
				n, err := bookings.ReleaseExpired(ctx)
				if err != nil {
					return err
				}
				a.log.Info().Int("bookings", n).Msg("Released expired bookings")
				return nil
			})
		},
	}
}

func (a *app) openDB() (*sql.DB, error) {
	db, err := postgresql.NewDB(a.cfg.serverConfig())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

type noopNotifier struct{}

func (noopNotifier) BroadcastSlotEvent(domain.SlotEvent) {}

func (a *app) withServices(ctx context.Context, fn func(context.Context, *service.PropertyService, *service.BookingService) error) error {
	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(a.log.WithContext(ctx), jobTimeout)
	defer cancel()

	propRepo := postgresql.NewPgPropertyRepository(db)
	slotRepo := postgresql.NewPgPropertySlotRepository(db)
	bookingRepo := postgresql.NewPgBookingRepository(db)
	return fn(ctx,
		service.NewPropertyService(propRepo, slotRepo, bookingRepo, a.log),
		service.NewBookingService(propRepo, slotRepo, bookingRepo, noopNotifier{}, a.log),
	)
}
