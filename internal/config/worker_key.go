package config

type WorkerKeyStruct struct {
	// PersistResultsQueue buffers submitted ResultRecords between the
	// submission coordinator and the archival worker.
	PersistResultsQueue string
}

func NewWorkerKeyStruct() *WorkerKeyStruct {
	return &WorkerKeyStruct{
		PersistResultsQueue: "persist_results_queue",
	}
}

var WorkerKey = NewWorkerKeyStruct()
