// Package main provides the graphnet demo CLI.
//
// Usage:
//
//	graphnet [flags] xor
//	graphnet [flags] -corpus=book.txt text
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/graphnet/nn"
	"github.com/born-ml/graphnet/optim"
	"github.com/born-ml/graphnet/tensor"
	"github.com/born-ml/graphnet/tokenizer"
)

var (
	flagEpochs    = flag.Int("epochs", 0, "Training epochs. 0 uses the command's default.")
	flagBatchSize = flag.Int("batch", 0, "Batch size. 0 uses the command's default.")
	flagLR        = flag.Float64("lr", 0, "Learning rate. 0 uses the command's default.")
	flagSeed      = flag.Uint64("seed", 42, "Seed for initializers and shuffling. 0 seeds from the clock.")
	flagWorkers   = flag.Int("workers", 0, "Goroutines for elementwise kernels. 0 keeps the default.")

	flagCorpus    = flag.String("corpus", "", "Text file the text command trains on.")
	flagTokenizer = flag.String("tokenizer", "", "HuggingFace tokenizer.json. Empty uses tiktoken.")
	flagEncoding  = flag.String("encoding", "cl100k_base", "tiktoken encoding used without -tokenizer.")
	flagContext   = flag.Int("context", 8, "Tokens of context per training window.")
	flagGenerate  = flag.Int("generate", 20, "Tokens the text command generates after training.")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <xor|text>\n\nFlags:\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	klog.InitFlags(nil)
	flag.Usage = usage
	flag.Parse()
	if *flagWorkers > 0 {
		tensor.SetWorkers(*flagWorkers)
	}

	var err error
	switch flag.Arg(0) {
	case "xor":
		err = runXOR()
	case "text":
		err = runText()
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		klog.Fatalf("Failed with error: %+v", err)
	}
}

func orDefault[T int | float64](v, def T) T {
	if v == 0 {
		return def
	}
	return v
}

func runXOR() error {
	x := tensor.FromRows([][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}})
	y := tensor.FromRows([][]float64{{0}, {1}, {1}, {0}})

	model := nn.NewSequential(
		nn.NewInput(2),
		nn.NewDense(nn.DenseConfig{Units: 4, WeightInit: nn.NewXavier(*flagSeed)}),
		nn.NewTanh(),
		nn.NewDense(nn.DenseConfig{Units: 1, WeightInit: nn.NewXavier(*flagSeed + 1)}),
	)
	model.Setup(optim.NewAdam(optim.AdamConfig{LR: orDefault(*flagLR, 0.05)}), nn.SigmoidCrossEntropy{})

	history, err := model.Train(x, y, nn.TrainConfig{
		Epochs:    orDefault(*flagEpochs, 1000),
		BatchSize: orDefault(*flagBatchSize, 4),
		Shuffle:   true,
		Seed:      *flagSeed,
	})
	if err != nil {
		return err
	}
	fmt.Print(model.Summary())
	if n := len(history); n > 0 {
		fmt.Printf("epochs: %d, final loss: %.4f\n", n, history[n-1].Loss)
	}

	pred, err := model.Predict(x, 4)
	if err != nil {
		return err
	}
	for i := 0; i < 4; i++ {
		fmt.Printf("%v xor %v -> %.3f\n", x.At(i, 0), x.At(i, 1), sigmoid(pred.At(i, 0)))
	}
	accuracy, loss, err := model.Evaluate(x, y, 4)
	if err != nil {
		return err
	}
	fmt.Printf("accuracy: %.2f, loss: %.4f\n", accuracy, loss)
	return nil
}

func sigmoid(v float64) float64 { return 1 / (1 + math.Exp(-v)) }

func loadTokenizer() (tokenizer.Tokenizer, error) {
	if *flagTokenizer != "" {
		return tokenizer.LoadBPE(*flagTokenizer)
	}
	return tokenizer.NewTikToken(*flagEncoding)
}

func runText() error {
	if *flagCorpus == "" {
		return errors.New("text: -corpus is required")
	}
	data, err := os.ReadFile(*flagCorpus)
	if err != nil {
		return errors.Wrap(err, "text: failed to read corpus")
	}
	tok, err := loadTokenizer()
	if err != nil {
		return err
	}
	ids := must.M1(tok.Encode(string(data)))
	vocab := tokenizer.BuildVocab(ids)
	compact := vocab.Compact(ids)
	x, y := tokenizer.Windows(compact, *flagContext, vocab.Size())
	if x == nil {
		return errors.Errorf("text: corpus has %d tokens, need more than %d", len(ids), *flagContext)
	}
	klog.V(1).Infof("corpus: %d tokens, %d distinct, %d windows", len(ids), vocab.Size()-1, x.Shape()[0])

	model := nn.NewSequential(
		nn.NewEmbedding(nn.EmbeddingConfig{
			InputDim:   vocab.Size(),
			OutputDim:  16,
			MaskZero:   true,
			WeightInit: nn.NewRandomUniform(-0.05, 0.05, *flagSeed),
		}),
		nn.NewLSTM(nn.RNNConfig{Units: 32, WeightInit: nn.NewXavier(*flagSeed + 1), RecurrentInit: nn.NewXavier(*flagSeed + 2)}),
		nn.NewDense(nn.DenseConfig{Units: vocab.Size(), WeightInit: nn.NewXavier(*flagSeed + 3)}),
	)
	model.Setup(optim.NewAdam(optim.AdamConfig{LR: orDefault(*flagLR, 0.01), ClipNorm: 5}), nn.SoftmaxCrossEntropy{})

	history, err := model.Train(x, y, nn.TrainConfig{
		Epochs:    orDefault(*flagEpochs, 20),
		BatchSize: orDefault(*flagBatchSize, 32),
		Shuffle:   true,
		Seed:      *flagSeed,
	})
	if err != nil {
		return err
	}
	fmt.Print(model.Summary())
	for _, s := range history {
		fmt.Printf("epoch %3d loss %.4f\n", s.Epoch, s.Loss)
	}

	// Greedy continuation of the first window.
	window := append([]int(nil), compact[:*flagContext]...)
	generated := append([]int(nil), window...)
	for step := 0; step < *flagGenerate; step++ {
		sample := tensor.Zeros(*flagContext)
		for j, c := range window {
			sample.Set(float64(c), j)
		}
		logits, err := model.Predict1(sample)
		if err != nil {
			return err
		}
		next := logits.Reshape(1, -1).ArgMaxRows()[0]
		generated = append(generated, next)
		window = append(window[1:], next)
	}
	text, err := tok.Decode(vocab.Expand(generated))
	if err != nil {
		return err
	}
	fmt.Println(strings.TrimSpace(text))
	return nil
}
