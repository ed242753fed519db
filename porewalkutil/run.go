/*
Copyright © 2026 the PoreWalk authors.
This file is part of PoreWalk.

PoreWalk is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PoreWalk is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PoreWalk.  If not, see <http://www.gnu.org/licenses/>.
*/

package porewalkutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/porewalk"
	"github.com/spf13/cobra"
)

// newLogger returns a logger that writes to w and, if logFile is not
// empty, also to logFile. The returned function closes the log file.
func newLogger(w io.Writer, logFile string) (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.Out = w
	log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if logFile == "" {
		return log, func() {}, nil
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("porewalk: problem creating log file: %v", err)
	}
	log.Out = io.MultiWriter(w, f)
	return log, func() { f.Close() }, nil
}

// outChan returns a channel whose messages are logged as warnings.
// The channel should be closed when it is no longer needed.
func outChan(log logrus.FieldLogger) chan string {
	c := make(chan string)
	go func() {
		for msg := range c {
			log.Warn(msg)
		}
	}()
	return c
}

// loadField reads the grayscale field in variable of inputFile,
// downloading the file first if necessary.
func loadField(ctx context.Context, inputFile, variable string, voxelLength float64, c chan string) (*porewalk.Field, error) {
	if inputFile == "" {
		return nil, fmt.Errorf("you need to specify an input file configuration variable (for example: InputFile=\"image.ncf\")")
	}
	f, err := os.Open(maybeDownload(ctx, inputFile, c))
	if err != nil {
		return nil, fmt.Errorf("porewalk: opening input file: %v", err)
	}
	defer f.Close()
	return porewalk.LoadField(f, variable, voxelLength)
}

// Tortuosity calculates the tortuosity of the pore space in a
// grayscale image.
//
// cmd is the cobra.Command instance where Tortuosity is called from;
// log messages are written to its output.
//
// logFile is the path to the desired logfile location.
//
// inputFile is the path to the netCDF file containing the image in
// the variable named variable. voxelLength [m] overrides the voxel
// length stored in the file if it is greater than zero.
//
// cutoff, numParticles, meanFreePath, meanVelocity, randomSeed,
// totalWalkLength, and numThreads are passed to porewalk.ComputeTortuosity.
//
// outputFile is the path to the desired netCDF output file and
// outputVars specifies which result variables should be written to it.
// If plotFile is not empty, a plot of the mean squared displacement is
// saved there, and if resultFile is not empty, the complete result is
// saved there in gob format. Output paths may be blob storage locations.
//
// cacheSize is the number of surface caches held in memory.
func Tortuosity(cmd *cobra.Command, logFile, inputFile, variable string, voxelLength float64,
	cutoff porewalk.Cutoff, numParticles int, meanFreePath, meanVelocity float64, randomSeed int64,
	totalWalkLength float64, numThreads int, outputFile string, outputVars map[string]string,
	plotFile, resultFile string, cacheSize int) error {

	startTime := time.Now()
	ctx := context.TODO()
	var upload uploader

	log, closeLog, err := newLogger(cmd.OutOrStdout(), logFile)
	if err != nil {
		return err
	}
	defer closeLog()
	msgLog := outChan(log)
	defer close(msgLog)

	log.Info("Parsing output variable expressions...")
	o, err := porewalk.NewOutputter(upload.maybeUpload(outputFile), outputVars, nil)
	if err != nil {
		return err
	}
	plotPath, resultPath := plotFile, resultFile
	if plotFile != "" {
		plotPath = upload.maybeUpload(plotFile)
	}
	if resultFile != "" {
		resultPath = upload.maybeUpload(resultFile)
	}
	if upload.err != nil {
		return upload.err
	}

	field, err := loadField(ctx, inputFile, variable, voxelLength, msgLog)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"file":        inputFile,
		"shape":       [3]int{field.X(), field.Y(), field.Z()},
		"voxelLength": field.VoxelLength(),
		"cutoff":      cutoff.String(),
	}).Info("loaded grayscale field")

	if err = porewalk.Validate(field, cutoff, numParticles, meanFreePath, meanVelocity,
		randomSeed, totalWalkLength); err != nil {
		return err
	}

	if cacheSize < 1 {
		cacheSize = 1
	}
	store := porewalk.NewSurfaceCacheStore(numThreads, cacheSize)

	cStatus := make(chan *porewalk.SimulationStatus, 1)
	cTick := time.Tick(2 * time.Second)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		for status := range cStatus {
			if status.Interval == status.NumIntervals {
				log.Info(status.String())
				continue
			}
			select {
			case <-cTick:
				log.Info(status.String())
			default:
				runtime.Gosched()
			}
		}
		wg.Done()
	}()

	r := porewalk.ComputeTortuosity(field, cutoff, numParticles, meanFreePath, meanVelocity,
		randomSeed, totalWalkLength, numThreads,
		porewalk.WithLogger(log), porewalk.WithStatus(cStatus), porewalk.WithSurfaceCacheStore(store))
	close(cStatus)
	wg.Wait()
	if !r.Valid() {
		return fmt.Errorf("porewalk: the tortuosity could not be calculated; refer to the log for details")
	}
	log.WithFields(logrus.Fields{
		"Tx": r.Tortuosity[0], "Ty": r.Tortuosity[1], "Tz": r.Tortuosity[2],
	}).Info("tortuosity")

	if err = o.Output(r); err != nil {
		return err
	}
	if plotFile != "" {
		if err = plotResult(r, plotPath); err != nil {
			return err
		}
	}
	if resultFile != "" {
		if err = saveResult(r, resultPath); err != nil {
			return err
		}
	}
	if err = upload.upload(ctx); err != nil {
		return err
	}

	log.Printf("Elapsed time: %f hours", time.Since(startTime).Hours())
	return nil
}

// plotResult saves a plot of the mean squared displacement in r to
// fileName, using the file extension as the image format.
func plotResult(r *porewalk.Result, fileName string) error {
	format := strings.TrimPrefix(filepath.Ext(fileName), ".")
	if format == "" {
		format = "png"
	}
	w, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("porewalk: creating plot file: %v", err)
	}
	if err = porewalk.PlotMSD(r, w, format); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// saveResult saves r to fileName in gob format.
func saveResult(r *porewalk.Result, fileName string) error {
	w, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("porewalk: creating result file: %v", err)
	}
	if err = porewalk.Save(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Porosity prints the fraction of the voxels in the grayscale image in
// inputFile that fall within cutoff.
func Porosity(cmd *cobra.Command, inputFile, variable string, voxelLength float64, cutoff porewalk.Cutoff) error {
	log, _, err := newLogger(os.Stderr, "")
	if err != nil {
		return err
	}
	msgLog := outChan(log)
	defer close(msgLog)

	field, err := loadField(context.TODO(), inputFile, variable, voxelLength, msgLog)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%g\n", porewalk.Porosity(field, cutoff))
	return nil
}

// SurfaceArea prints the area [m²] of the interface between the pore
// space and the solid in the grayscale image in inputFile.
func SurfaceArea(cmd *cobra.Command, inputFile, variable string, voxelLength float64, cutoff porewalk.Cutoff,
	method porewalk.SurfaceAreaMethod, numThreads int) error {
	log, _, err := newLogger(os.Stderr, "")
	if err != nil {
		return err
	}
	msgLog := outChan(log)
	defer close(msgLog)

	field, err := loadField(context.TODO(), inputFile, variable, voxelLength, msgLog)
	if err != nil {
		return err
	}
	area, err := porewalk.SurfaceArea(field, cutoff, method, numThreads)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%g\n", area)
	return nil
}
