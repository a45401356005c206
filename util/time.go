package util

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/astaxie/beego/logs"
)

const (
	// MaxAllowedOffsetSecs is the maximum number of seconds in either
	// direction that local clock will be adjusted by peer samples.
	MaxAllowedOffsetSecs = 70 * 60
	// SimilarTimeSecs is the number of seconds in either direction from the
	// local clock that is used to determine whether a sample is close enough.
	SimilarTimeSecs = 5 * 60
)

var maxMedianTimeEntries = 200

var mockTime int64

func GetTimeSec() int64 {
	if mockTime > 0 {
		return mockTime
	}
	return time.Now().Unix()
}

func GetTimeMicroSec() int64 {
	if mockTime > 0 {
		return mockTime * 1000 * 1000
	}
	return time.Now().UnixNano() / 1000
}

// SetMockTime pins GetTimeSec to the given second. Zero restores the
// real clock.
func SetMockTime(time int64) {
	mockTime = time
}

// GetAdjustedTimeSec is local time corrected by the median of the
// offsets our time samples reported.
func GetAdjustedTimeSec() int64 {
	return GetTimeSec() + GetTimeOffsetSec()
}

func GetTimeOffsetSec() int64 {
	return GetMedianTimeSource().getOffsetSec()
}

// MedianTime keeps the offset samples collected from outside sources
// and derives the median offset from them. One sample per source id.
type MedianTime struct {
	mtx                sync.Mutex
	knownIDs           map[string]struct{}
	offsets            []int64
	offsetSecs         int64
	invalidTimeChecked bool
}

var medianTimeSource = newMedianTime()

func GetMedianTimeSource() *MedianTime {
	return medianTimeSource
}

func newMedianTime() *MedianTime {
	return &MedianTime{
		knownIDs: make(map[string]struct{}),
		offsets:  make([]int64, 0, maxMedianTimeEntries),
	}
}

func (mt *MedianTime) getOffsetSec() int64 {
	mt.mtx.Lock()
	defer mt.mtx.Unlock()
	return mt.offsetSecs
}

// AddTimeSample records the difference between timeVal and the local
// clock for the given source, then recomputes the median offset. The
// median is only refreshed once at least five samples exist and the
// sample count is odd, and a median beyond MaxAllowedOffsetSecs is
// discarded.
func (mt *MedianTime) AddTimeSample(sourceID string, timeVal time.Time) {
	mt.mtx.Lock()
	defer mt.mtx.Unlock()

	if _, exists := mt.knownIDs[sourceID]; exists {
		return
	}
	mt.knownIDs[sourceID] = struct{}{}

	now := time.Unix(time.Now().Unix(), 0)
	offsetSecs := int64(timeVal.Sub(now).Seconds())
	numOffsets := len(mt.offsets)
	if numOffsets == maxMedianTimeEntries && maxMedianTimeEntries > 0 {
		mt.offsets = mt.offsets[1:]
		numOffsets--
	}
	mt.offsets = append(mt.offsets, offsetSecs)
	numOffsets++

	sortedOffsets := make([]int64, numOffsets)
	copy(sortedOffsets, mt.offsets)
	sort.Slice(sortedOffsets, func(i, j int) bool {
		return sortedOffsets[i] < sortedOffsets[j]
	})

	offsetDuration := time.Duration(offsetSecs) * time.Second
	logs.Debug("added time sample of %v (total: %v)", offsetDuration, numOffsets)

	if numOffsets < 5 || numOffsets&0x01 != 1 {
		return
	}

	median := sortedOffsets[numOffsets/2]
	if math.Abs(float64(median)) < MaxAllowedOffsetSecs {
		mt.offsetSecs = median
	} else {
		mt.offsetSecs = 0
		if !mt.invalidTimeChecked {
			mt.invalidTimeChecked = true
			var hasCloseTime bool
			for _, offset := range sortedOffsets {
				if math.Abs(float64(offset)) < SimilarTimeSecs {
					hasCloseTime = true
					break
				}
			}
			if !hasCloseTime {
				logs.Warn("please check your date and time are correct")
			}
		}
	}
}
