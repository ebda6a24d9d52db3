// internal/store/store.go
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cfsmart/painel-lamole/internal/domain"
)

// Store guarda os datasets importados, o histórico e os cenários do simulador.
// A memória é a fonte da verdade; os arquivos JSON locais e o Firestore são
// réplicas de conveniência, e falhas neles nunca derrubam uma operação.
type Store struct {
	mu        sync.RWMutex
	datasets  map[string]domain.RawGrid
	active    string
	history   []domain.ImportHistory
	resetLogs []domain.ResetLog
	scenarios map[string]map[string]float64

	dataDir string
	client  *firestore.Client
	log     *zap.SugaredLogger
}

const (
	datasetsFile = "datasets.json"
	historyFile  = "history.json"
)

// New cria o store e carrega o estado persistido em dataDir, se existir.
// client pode ser nil quando o Firestore não está configurado.
func New(dataDir string, client *firestore.Client, log *zap.SugaredLogger) *Store {
	s := &Store{
		datasets:  make(map[string]domain.RawGrid),
		scenarios: make(map[string]map[string]float64),
		dataDir:   dataDir,
		client:    client,
		log:       log,
	}
	s.loadLocal()
	return s
}

type datasetsSnapshot struct {
	Active   string                    `json:"active"`
	Datasets map[string]domain.RawGrid `json:"datasets"`
}

type historySnapshot struct {
	History   []domain.ImportHistory `json:"history"`
	ResetLogs []domain.ResetLog      `json:"resetLogs"`
}

// SaveDataset grava (ou substitui) um dataset e o torna ativo.
func (s *Store) SaveDataset(name string, grid domain.RawGrid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[name] = grid
	s.active = name
	delete(s.scenarios, name)
	return s.persistDatasetsLocked()
}

// ActiveGrid devolve a planilha ativa. ok é falso quando nada foi importado.
func (s *Store) ActiveGrid() (name string, grid domain.RawGrid, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grid, ok = s.datasets[s.active]
	return s.active, grid, ok
}

// SetActive troca o dataset ativo.
func (s *Store) SetActive(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[name]; !ok {
		return fmt.Errorf("dataset %q não encontrado", name)
	}
	s.active = name
	return s.persistDatasetsLocked()
}

// Datasets lista os nomes dos datasets importados, em ordem estável.
func (s *Store) Datasets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.datasets))
	for name := range s.datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AppendHistory registra uma tentativa de importação.
func (s *Store) AppendHistory(entry domain.ImportHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, entry)
	return s.persistHistoryLocked()
}

// History devolve o histórico do mais recente para o mais antigo.
func (s *Store) History() []domain.ImportHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ImportHistory, len(s.history))
	copy(out, s.history)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

// DeleteHistory remove uma entrada do histórico por id.
func (s *Store) DeleteHistory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, entry := range s.history {
		if entry.ID == id {
			s.history = append(s.history[:i], s.history[i+1:]...)
			return s.persistHistoryLocked()
		}
	}
	return fmt.Errorf("registro de importação %q não encontrado", id)
}

// Scenario devolve uma cópia das edições do simulador para o dataset.
func (s *Store) Scenario(dataset string) map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	edits := make(map[string]float64, len(s.scenarios[dataset]))
	for id, v := range s.scenarios[dataset] {
		edits[id] = v
	}
	return edits
}

// MergeScenario aplica novas edições sobre as existentes do dataset.
func (s *Store) MergeScenario(dataset string, edits map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.scenarios[dataset]
	if current == nil {
		current = make(map[string]float64, len(edits))
		s.scenarios[dataset] = current
	}
	for id, v := range edits {
		current[id] = v
	}
}

// ClearScenario descarta as edições do simulador para o dataset.
func (s *Store) ClearScenario(dataset string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scenarios, dataset)
}

// ResetLogs devolve a trilha de auditoria dos resets, do mais recente ao
// mais antigo.
func (s *Store) ResetLogs() []domain.ResetLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ResetLog, len(s.resetLogs))
	copy(out, s.resetLogs)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

// FactoryReset apaga datasets, histórico, cenários e os arquivos locais,
// preservando apenas a trilha de resets, e registra o próprio reset nela.
func (s *Store) FactoryReset(userID string) domain.ResetLog {
	start := time.Now()
	entry := domain.ResetLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Timestamp: start,
		Success:   true,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.datasets = make(map[string]domain.RawGrid)
	s.active = ""
	s.scenarios = make(map[string]map[string]float64)
	entry.Steps = append(entry.Steps, "datasets e cenários descartados")

	s.history = nil
	entry.Steps = append(entry.Steps, "histórico de importações limpo")

	for _, file := range []string{datasetsFile, historyFile} {
		path := filepath.Join(s.dataDir, file)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			entry.Success = false
			entry.Error = err.Error()
			s.log.Errorw("falha ao remover arquivo local no reset", "arquivo", path, "erro", err)
			continue
		}
		entry.Steps = append(entry.Steps, fmt.Sprintf("arquivo %s removido", file))
	}

	entry.Duration = time.Since(start)
	s.resetLogs = append(s.resetLogs, entry)
	if err := s.persistHistoryLocked(); err != nil {
		s.log.Errorw("falha ao persistir trilha de reset", "erro", err)
	}
	return entry
}

func (s *Store) persistDatasetsLocked() error {
	return s.writeJSON(datasetsFile, datasetsSnapshot{Active: s.active, Datasets: s.datasets})
}

func (s *Store) persistHistoryLocked() error {
	return s.writeJSON(historyFile, historySnapshot{History: s.history, ResetLogs: s.resetLogs})
}

func (s *Store) writeJSON(file string, v any) error {
	if s.dataDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("criando diretório de dados: %w", err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("serializando %s: %w", file, err)
	}
	if err := os.WriteFile(filepath.Join(s.dataDir, file), data, 0o644); err != nil {
		return fmt.Errorf("gravando %s: %w", file, err)
	}
	return nil
}

func (s *Store) loadLocal() {
	if s.dataDir == "" {
		return
	}

	var ds datasetsSnapshot
	if s.readJSON(datasetsFile, &ds) && ds.Datasets != nil {
		s.datasets = ds.Datasets
		s.active = ds.Active
	}

	var hs historySnapshot
	if s.readJSON(historyFile, &hs) {
		s.history = hs.History
		s.resetLogs = hs.ResetLogs
	}
}

func (s *Store) readJSON(file string, v any) bool {
	data, err := os.ReadFile(filepath.Join(s.dataDir, file))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warnw("falha ao ler estado local", "arquivo", file, "erro", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.log.Warnw("estado local corrompido, ignorando", "arquivo", file, "erro", err)
		return false
	}
	return true
}
