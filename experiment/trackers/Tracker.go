// Package trackers implements Trackers, which track per-episode data
// from the TimeSteps of an environment and save it to disk
package trackers

import (
	"encoding/gob"
	"os"

	"github.com/pkg/errors"

	ts "github.com/samuelfneumann/gops/timestep"
)

// Tracker keeps track of episode data and saves the data when asked
type Tracker interface {
	Track(t ts.TimeStep)
	Save(filename string) error
}

// save gob-encodes data into filename
func save(filename string, data interface{}) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "save: could not open save file")
	}
	defer file.Close()

	if err = gob.NewEncoder(file).Encode(data); err != nil {
		return errors.Wrap(err, "save: could not encode data")
	}
	return nil
}

// LoadData loads and returns the data saved by a Return Tracker
func LoadData(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "loadData: could not open data file")
	}
	defer file.Close()

	var data []float64
	if err = gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "loadData: could not decode data")
	}
	return data, nil
}
