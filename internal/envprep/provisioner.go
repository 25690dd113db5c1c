package envprep

// Provisioner prepares worker environments before a run
type Provisioner interface {
	Run(workerCount int) error
}
