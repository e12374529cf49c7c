// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.17
//

package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	g "github.com/mkhts/gotraj"
	"github.com/mkhts/gotraj/internal/config"
)

// Print trajectory file header
func printHeader(w io.Writer, cmd string, cfg *config.Config, atm *g.Atmosphere, traj *g.Trajectory, atmos bool) {
	fmt.Fprintf(w, "%% program   : %s\n", filepath.Base(cmd))
	switch {
	case atm.Sounding == nil:
		fmt.Fprintf(w, "%% meteo     : standard atmosphere\n")
	case atm.HasSounding():
		fmt.Fprintf(w, "%% meteo     : %s (%d rows)\n", cfg.Atmosphere.MeteoFile, atm.Sounding.Len())
	default:
		fmt.Fprintf(w, "%% meteo     : %s (ignored: %s)\n", cfg.Atmosphere.MeteoFile, atm.Sounding.Diagnosis())
	}
	fmt.Fprintf(w, "%% ground    : %.1f degC %.1f hPa %.1f m (%s)\n", atm.Temp0, atm.Pressure0, atm.Height0, atm.Opt.Pressure.String())
	fmt.Fprintf(w, "%% shot      : v0 %.1f m/s  elevation %.2f deg  azimuth %.0f  dt %.3f s\n",
		cfg.Shot.V0, cfg.Shot.Elevation, cfg.Projectile.Direction, cfg.Shot.Dt)
	fmt.Fprintf(w, "%% projectile: radius %.4f m  mass %.3f kg\n", cfg.Projectile.Radius, cfg.Projectile.Mass)
	fmt.Fprintf(w, "%% result    : range %.1f m  drift %.1f m  max height %.1f m  apex %.1f s  flight %.1f s (%s)\n",
		traj.Range(), traj.Drift(), traj.MaxHeight(), traj.TimeToApex(), traj.FlightTime(), traj.Reason)
	if atmos {
		fmt.Fprintf(w, "%%     t(s)         x(m)         y(m)         z(m)     T(K)   p(hPa) rho(kg/m3)  c(m/s)   wdir  wvel(m/s)\n")
	} else {
		fmt.Fprintf(w, "%%     t(s)         x(m)         y(m)         z(m)\n")
	}
}

// Output trajectory as a fixed-width table
func printTrajectory(w io.Writer, traj *g.Trajectory, atm *g.Atmosphere, atmos bool) error {
	times := traj.Times()
	for i, p := range traj.Points {
		fmt.Fprintf(w, "%10.2f %12.3f %12.3f %12.3f", times[i], p.X, p.Y, p.Z)
		if atmos {
			c, err := atm.Sample(p)
			if err != nil {
				return fmt.Errorf("air properties at t=%.2f: %w", times[i], err)
			}
			fmt.Fprintf(w, " %8.2f %8.2f %10.5f %7.2f %6.0f %10.2f", c.Temperature, c.Pressure, c.Density, c.SpeedOfSound, c.WindDir, c.WindVel)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// Output trajectory as CSV
func writeCsv(w io.Writer, traj *g.Trajectory, atm *g.Atmosphere, atmos, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		cols := []string{"t", "x", "y", "z"}
		if atmos {
			cols = append(cols, "temperature", "pressure", "density", "speed_of_sound", "wind_dir", "wind_vel")
		}
		cw.Write(cols)
	}
	times := traj.Times()
	for i, p := range traj.Points {
		rec := []string{ftoa(times[i]), ftoa(p.X), ftoa(p.Y), ftoa(p.Z)}
		if atmos {
			c, err := atm.Sample(p)
			if err != nil {
				return fmt.Errorf("air properties at t=%.2f: %w", times[i], err)
			}
			rec = append(rec, ftoa(c.Temperature), ftoa(c.Pressure), ftoa(c.Density), ftoa(c.SpeedOfSound), ftoa(c.WindDir), ftoa(c.WindVel))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("could not write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("could not flush csv: %w", err)
	}
	return nil
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
