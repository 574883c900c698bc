package renderer

import "math"

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into row blocks and assign one block to each worker using
	// the block stats collected from the previous frame. lastFrame is nil
	// for the first frame.
	//
	// This function returns the block height assignment for each worker;
	// the heights always add up to frameH.
	Schedule(numWorkers int, frameH uint32, lastFrame []BlockStat) []uint32
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance
func NewPerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// When previous frame information is available the scheduler uses the
// following formula for estimating the workload for worker w and frame i+1:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i-1 / time,i-1)
func (sch *perfectScheduler) Schedule(numWorkers int, frameH uint32, lastFrame []BlockStat) []uint32 {
	if numWorkers < 1 {
		numWorkers = 1
	}

	// If this is the first time we try to schedule or the number of workers
	// has changed we split the frame evenly.
	if len(sch.blockAssignment) != numWorkers || len(lastFrame) != numWorkers {
		sch.blockAssignment = make([]uint32, numWorkers)
		for idx := range sch.blockAssignment {
			sch.blockAssignment[idx] = frameH / uint32(numWorkers)
		}
		sch.blockAssignment[0] += frameH % uint32(numWorkers)
		return sch.blockAssignment
	}

	// Use last frame statistics
	speeds := make([]float64, numWorkers)
	var total float64
	for idx, stat := range lastFrame {
		speeds[idx] = float64(stat.BlockH) / math.Max(1, float64(stat.RenderTime))
		total += speeds[idx]
	}
	if total == 0 {
		for idx := range speeds {
			speeds[idx] = 1
		}
		total = float64(numWorkers)
	}

	var minRows uint32
	if frameH >= uint32(numWorkers) {
		minRows = 1
	}

	scaler := float64(frameH) / total
	var scheduledRows uint32
	for idx := range sch.blockAssignment {
		sch.blockAssignment[idx] = max(minRows, uint32(math.Floor(speeds[idx]*scaler)))
		scheduledRows += sch.blockAssignment[idx]
	}

	// In case rows don't add up to the frame height append the missing ones
	// to the first worker or trim the excess from the largest blocks.
	if scheduledRows < frameH {
		sch.blockAssignment[0] += frameH - scheduledRows
	}
	for ; scheduledRows > frameH; scheduledRows-- {
		largest := 0
		for idx, rows := range sch.blockAssignment {
			if rows > sch.blockAssignment[largest] {
				largest = idx
			}
		}
		sch.blockAssignment[largest]--
	}

	return sch.blockAssignment
}
