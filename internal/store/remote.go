// internal/store/remote.go
package store

import (
	"context"
	"encoding/json"

	"google.golang.org/api/iterator"

	"github.com/cfsmart/painel-lamole/internal/domain"
)

// Documento da coleção "datasets" no Firestore. O conteúdo vai como JSON
// serializado porque o Firestore não aceita arrays aninhados diretamente.
type remoteDataset struct {
	Name    string `firestore:"name"`
	Content string `firestore:"content"`
}

// SyncLoad substitui os datasets locais pelos da coleção remota. Sem cliente
// configurado ou com erro de leitura, o estado local fica como está.
func (s *Store) SyncLoad(ctx context.Context) {
	if s.client == nil {
		return
	}

	iter := s.client.Collection("datasets").Documents(ctx)
	defer iter.Stop()

	loaded := make(map[string]domain.RawGrid)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			s.log.Warnw("falha ao ler datasets remotos", "erro", err)
			return
		}

		var rd remoteDataset
		if err := doc.DataTo(&rd); err != nil {
			s.log.Warnw("documento remoto inválido", "doc", doc.Ref.ID, "erro", err)
			continue
		}
		var grid domain.RawGrid
		if err := json.Unmarshal([]byte(rd.Content), &grid); err != nil {
			s.log.Warnw("conteúdo remoto ilegível", "dataset", rd.Name, "erro", err)
			continue
		}
		loaded[rd.Name] = grid
	}

	if len(loaded) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets = loaded
	if _, ok := s.datasets[s.active]; !ok {
		for name := range loaded {
			s.active = name
			break
		}
	}
	if err := s.persistDatasetsLocked(); err != nil {
		s.log.Warnw("falha ao persistir datasets sincronizados", "erro", err)
	}
	s.log.Infow("datasets sincronizados do Firestore", "quantidade", len(loaded))
}

// UpsertRemote replica um dataset para o Firestore. Melhor-esforço: qualquer
// erro é logado e engolido.
func (s *Store) UpsertRemote(ctx context.Context, name string, grid domain.RawGrid) {
	if s.client == nil {
		return
	}

	content, err := json.Marshal(grid)
	if err != nil {
		s.log.Warnw("falha ao serializar dataset para o remoto", "dataset", name, "erro", err)
		return
	}

	_, err = s.client.Collection("datasets").Doc(name).Set(ctx, remoteDataset{
		Name:    name,
		Content: string(content),
	})
	if err != nil {
		s.log.Warnw("falha ao replicar dataset para o Firestore", "dataset", name, "erro", err)
		return
	}
	s.log.Infow("dataset replicado no Firestore", "dataset", name)
}
