// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/graphnet/autograd"
	"github.com/born-ml/graphnet/nn"
	"github.com/born-ml/graphnet/optim"
	"github.com/born-ml/graphnet/tensor"
)

// TestLayerInterface verifies that the public layers work through the Layer
// interface.
func TestLayerInterface(t *testing.T) {
	tests := []struct {
		name  string
		layer nn.Layer
		input *tensor.Array
		want  []int
	}{
		{"Dense", nn.NewDense(nn.DenseConfig{Units: 3}), tensor.Ones(2, 4), []int{2, 3}},
		{"Flatten", nn.NewFlatten(), tensor.Ones(2, 3, 2), []int{2, 6}},
		{"Reshape", nn.NewReshape(3, 2), tensor.Ones(2, 6), []int{2, 3, 2}},
		{"ReLU", nn.NewReLU(), tensor.Ones(2, 4), []int{2, 4}},
		{"Embedding", nn.NewEmbedding(nn.EmbeddingConfig{InputDim: 5, OutputDim: 3}), tensor.Ones(2, 4), []int{2, 4, 3}},
		{"LSTM", nn.NewLSTM(nn.RNNConfig{Units: 3}), tensor.Ones(2, 4, 5), []int{2, 3}},
		{"SimpleRNN", nn.NewSimpleRNN(nn.RNNConfig{Units: 3, ReturnSequences: true}), tensor.Ones(2, 4, 5), []int{2, 4, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := nn.NewSequential(tt.layer)
			out := must.M1(model.Forward(autograd.Const(tt.input), nn.Inference))
			assert.Equal(t, tt.want, []int(out.Data().Shape()))
		})
	}
}

func TestPublicTrainingLoop(t *testing.T) {
	x := tensor.FromRows([][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}})
	y := tensor.FromRows([][]float64{{0}, {1}, {1}, {1}})

	model := nn.NewSequential(
		nn.NewInput(2),
		nn.NewDense(nn.DenseConfig{Units: 1, WeightInit: nn.NewXavier(5)}),
	)
	model.Setup(optim.NewSGD(optim.SGDConfig{LR: 0.5, Momentum: 0.9}), nn.SigmoidCrossEntropy{})

	history, err := model.Train(x, y, nn.TrainConfig{Epochs: 300, BatchSize: 4})
	require.NoError(t, err)
	require.Len(t, history, 300)
	assert.Less(t, history[len(history)-1].Loss, history[0].Loss)

	accuracy, _, err := model.Evaluate(x, y, 4)
	require.NoError(t, err)
	assert.Equal(t, 1.0, accuracy)
}

func TestPublicErrors(t *testing.T) {
	model := nn.NewSequential(nn.NewDense(nn.DenseConfig{Units: 1}))
	_, err := model.TrainOnBatch(tensor.Ones(1, 2), tensor.Ones(1, 1))
	assert.ErrorIs(t, err, nn.ErrNotSetup)

	graph := nn.NewGraph(nil)
	_, err = graph.Forward(autograd.Const(tensor.Ones(1, 2)), nn.Inference)
	assert.ErrorIs(t, err, autograd.ErrNotImplemented)
}
