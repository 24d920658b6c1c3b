package main

import (
	"flag"
	"log"
	"os"

	"landslide-backend/internal/core"

	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v2"
)

// Workflow is the YAML description of one training run, mirroring the
// arguments of the HTTP train endpoint for offline use.
type Workflow struct {
	Dataset      string         `yaml:"dataset"`
	Model        string         `yaml:"model"`
	Target       string         `yaml:"target"`
	Features     []string       `yaml:"features"`
	TestFraction float64        `yaml:"test_fraction"`
	Params       map[string]any `yaml:"params"`
}

func main() {
	var (
		workflowPath string
		archivePath  string
		showReport   bool
	)
	flag.StringVar(&workflowPath, "workflow", "workflow.yaml", "path to the training workflow file")
	flag.StringVar(&archivePath, "out", "model.bin", "path to write the model archive to")
	flag.BoolVar(&showReport, "show", false, "print the classification report")
	flag.Parse()

	raw, err := os.ReadFile(workflowPath)
	if err != nil {
		log.Fatalf("failed to read workflow %s: %v", workflowPath, err)
	}
	var workflow Workflow
	if err := yaml.Unmarshal(raw, &workflow); err != nil {
		log.Fatalf("failed to parse workflow %s: %v", workflowPath, err)
	}

	kind, err := core.ParseModelKind(workflow.Model)
	if err != nil {
		log.Fatalf("invalid workflow: %v", err)
	}

	bar := progressbar.Default(3, "training "+workflow.Model)

	manager, err := core.NewManager(core.ModelSpec{
		Kind:           kind,
		DatasetPath:    workflow.Dataset,
		TargetColumn:   workflow.Target,
		FeatureColumns: workflow.Features,
		TestFraction:   workflow.TestFraction,
	}, nil)
	if err != nil {
		log.Fatalf("failed to build model: %v", err)
	}

	if err := manager.Reconfigure(workflow.Params); err != nil {
		log.Fatalf("failed to train model: %v", err)
	}
	bar.Add(1) //nolint:errcheck

	report, err := manager.Evaluate(showReport)
	if err != nil {
		log.Fatalf("failed to evaluate model: %v", err)
	}
	bar.Add(1) //nolint:errcheck

	if err := manager.Save(archivePath); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}
	bar.Add(1) //nolint:errcheck

	log.Printf("model trained: accuracy=%.4f train=%d test=%d archive=%s",
		report.Accuracy, manager.TrainSize(), manager.TestSize(), archivePath)
}
