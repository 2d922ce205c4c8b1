package kernels

import (
	"fmt"
	"math"

	"github.com/tetra-ml/tetra/internal/tensor"
)

// LstmCellFloat advances a fused LSTM cell by one step.
//
// The current input and previous activation concatenate along the channel
// dimension and pass through one fully-connected layer producing four
// gate pre-activations per output channel, stacked along the channel
// dimension in the order input gate, new input, forget gate, output gate.
// Then, per channel:
//
//	state  = sigmoid(inputGate) * tanh(newInput) + sigmoid(forgetGate) * prevState
//	activ  = sigmoid(outputGate) * tanh(state)
//
// The weights matrix is [4*outputDepth rows × inputDepth+outputDepth
// cols] and the bias has 4*outputDepth channels. concatTemp and
// activTemp are caller-supplied scratch shaped like the concatenated
// input and the gate pre-activations respectively.
func LstmCellFloat(
	input []float32, inputDims tensor.Dims,
	prevActiv []float32, prevActivDims tensor.Dims,
	weights []float32, weightsDims tensor.Dims,
	bias []float32, biasDims tensor.Dims,
	prevState []float32, prevStateDims tensor.Dims,
	outputState []float32, outputStateDims tensor.Dims,
	outputActiv []float32, outputActivDims tensor.Dims,
	concatTemp []float32, concatTempDims tensor.Dims,
	activTemp []float32, activTempDims tensor.Dims) {
	tensor.MatchingExtent(3, inputDims, prevActivDims, prevStateDims, outputStateDims, outputActivDims)
	tensor.MatchingExtent(2, inputDims, prevActivDims, prevStateDims, outputStateDims, outputActivDims)
	tensor.MatchingExtent(1, inputDims, prevActivDims, prevStateDims, outputStateDims, outputActivDims)
	if weightsDims.Extent(2) != 1 || weightsDims.Extent(3) != 1 {
		panic("lstmcell: weights must be a matrix (height and batch extents 1)")
	}
	inputDepth := inputDims.Extent(0)
	prevActivDepth := prevActivDims.Extent(0)
	totalInputDepth := inputDepth + prevActivDepth
	if weightsDims.Extent(0) != totalInputDepth {
		panic(fmt.Sprintf("lstmcell: weights expect %d input channels, concatenated input has %d",
			weightsDims.Extent(0), totalInputDepth))
	}
	if biasDims.Extent(1) != 1 || biasDims.Extent(2) != 1 || biasDims.Extent(3) != 1 {
		panic("lstmcell: bias must be a vector")
	}
	internActivDepth := weightsDims.Extent(1)
	if biasDims.Extent(0) != internActivDepth {
		panic(fmt.Sprintf("lstmcell: bias depth %d, want %d gate channels", biasDims.Extent(0), internActivDepth))
	}
	if activTempDims.Extent(0) != internActivDepth {
		panic(fmt.Sprintf("lstmcell: gate scratch depth %d, want %d", activTempDims.Extent(0), internActivDepth))
	}
	if internActivDepth%4 != 0 {
		panic(fmt.Sprintf("lstmcell: gate depth %d is not a multiple of 4", internActivDepth))
	}
	outputDepth := tensor.MatchingExtent(0, prevStateDims, prevActivDims, outputStateDims, outputActivDims)
	if outputDepth != internActivDepth/4 {
		panic(fmt.Sprintf("lstmcell: output depth %d, want %d (gate depth / 4)",
			outputDepth, internActivDepth/4))
	}

	Concatenation(0,
		[][]float32{input, prevActiv}, []tensor.Dims{inputDims, prevActivDims},
		concatTemp, concatTempDims)
	FullyConnectedFloat(ActivationNone,
		concatTemp, concatTempDims, weights, weightsDims, bias, biasDims,
		activTemp, activTempDims)

	// Gate order along the channel dimension of activTemp.
	const (
		gateInput = iota
		gateNewInput
		gateForget
		gateOutput
	)
	cols := activTempDims.FlatSize() / internActivDepth
	for col := 0; col < cols; col++ {
		gates := activTemp[col*internActivDepth : (col+1)*internActivDepth]
		gate := func(g, c int) float32 { return gates[g*outputDepth+c] }
		state := outputState[col*outputDepth : (col+1)*outputDepth]
		activ := outputActiv[col*outputDepth : (col+1)*outputDepth]
		prev := prevState[col*outputDepth : (col+1)*outputDepth]
		for c := 0; c < outputDepth; c++ {
			newState := sigmoid(gate(gateInput, c))*tanh32(gate(gateNewInput, c)) +
				sigmoid(gate(gateForget, c))*prev[c]
			state[c] = newState
			activ[c] = sigmoid(gate(gateOutput, c)) * tanh32(newState)
		}
	}
}

func sigmoid(v float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(v))))
}

func tanh32(v float32) float32 {
	return float32(math.Tanh(float64(v)))
}
