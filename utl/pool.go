package utl

import "sync"

//Task is one unit of work for the pool.
type Task interface {
	Run()
}

//Pool executes tasks on a fixed number of workers.
type Pool struct {
	tasks chan Task
	wg    sync.WaitGroup
}

//NewPool starts workersNum workers consuming tasks.
func NewPool(workersNum int) *Pool {
	pool := &Pool{tasks: make(chan Task)}
	pool.wg.Add(workersNum)
	for p := 0; p < workersNum; p++ {
		go func() {
			defer pool.wg.Done()
			for task := range pool.tasks {
				task.Run()
			}
		}()
	}
	return pool
}

//AddTask queues one task.
func (pool *Pool) AddTask(task Task) {
	pool.tasks <- task
}

//Close signals that no more tasks will be added.
func (pool *Pool) Close() {
	close(pool.tasks)
}

//WaitAll blocks until every queued task has finished.
func (pool *Pool) WaitAll() {
	pool.wg.Wait()
}

//TaskScanProjection scans one candidate projection and stores the result in
//its slot. Each task runs with its own criterion instance, so tasks share no
//mutable state.
type TaskScanProjection struct {
	result []CandidateSplit
	index  int
	scan   func(int) CandidateSplit
}

func (task *TaskScanProjection) Run() {
	task.result[task.index] = task.scan(task.index)
}
