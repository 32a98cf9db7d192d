package knowledge

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"ragtutor/internal/domain"
)

// Archive layout: a zip holding three entries. The manifest makes the
// blob self-describing so a store can be rebuilt with no out-of-band
// metadata beyond the embedder the reader intends to query with.
const (
	archiveFormatVersion = 1

	manifestEntry = "manifest.json"
	passagesEntry = "passages.json"
	vectorsEntry  = "vectors.bin"
)

type archiveManifest struct {
	FormatVersion int     `json:"format_version"`
	Dimension     int     `json:"dimension"`
	PassageCount  int     `json:"passage_count"`
	Embedder      string  `json:"embedder"`
	MinScore      float64 `json:"min_score"`
}

// Serialize produces a self-contained archive of the store: manifest,
// passage array and vector rows. The archive is assembled entirely in
// memory; no temporary files are created on any path.
func Serialize(store *Store) ([]byte, error) {
	if store == nil || store.Len() == 0 {
		return nil, domain.NewInvalidInputError("cannot serialize an empty knowledge store")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	manifest := archiveManifest{
		FormatVersion: archiveFormatVersion,
		Dimension:     store.dim,
		PassageCount:  store.Len(),
		Embedder:      store.embedder,
		MinScore:      store.minScore,
	}
	if err := writeJSONEntry(zw, manifestEntry, manifest); err != nil {
		return nil, domain.NewInternalError("failed to write archive manifest", err)
	}
	if err := writeJSONEntry(zw, passagesEntry, store.passages); err != nil {
		return nil, domain.NewInternalError("failed to write archive passages", err)
	}

	vw, err := zw.Create(vectorsEntry)
	if err != nil {
		return nil, domain.NewInternalError("failed to create archive vectors entry", err)
	}
	for _, vec := range store.vectors {
		if err := binary.Write(vw, binary.LittleEndian, vec); err != nil {
			return nil, domain.NewInternalError("failed to write archive vectors", err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, domain.NewInternalError("failed to finalize archive", err)
	}
	return buf.Bytes(), nil
}

// Deserialize reconstructs a store from an archive produced by
// Serialize. Round-trip law: the result has the same passages and
// vectors (within float tolerance) as the serialized store.
func Deserialize(data []byte) (*Store, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, domain.NewCorruptArchiveError("blob is not a valid store archive", err)
	}

	var manifest archiveManifest
	if err := readJSONEntry(zr, manifestEntry, &manifest); err != nil {
		return nil, err
	}
	if manifest.FormatVersion != archiveFormatVersion {
		return nil, domain.NewCorruptArchiveError(
			fmt.Sprintf("unsupported archive format version %d", manifest.FormatVersion), nil)
	}
	if manifest.Dimension <= 0 || manifest.PassageCount <= 0 {
		return nil, domain.NewCorruptArchiveError("archive manifest declares an empty store", nil)
	}

	var passages []domain.Passage
	if err := readJSONEntry(zr, passagesEntry, &passages); err != nil {
		return nil, err
	}
	if len(passages) != manifest.PassageCount {
		return nil, domain.NewCorruptArchiveError(
			fmt.Sprintf("archive holds %d passages, manifest declares %d", len(passages), manifest.PassageCount), nil)
	}

	raw, err := readEntry(zr, vectorsEntry)
	if err != nil {
		return nil, err
	}
	want := manifest.PassageCount * manifest.Dimension * 4
	if len(raw) != want {
		return nil, domain.NewCorruptArchiveError(
			fmt.Sprintf("vector data is %d bytes, expected %d", len(raw), want), nil)
	}

	vectors := make([][]float32, manifest.PassageCount)
	reader := bytes.NewReader(raw)
	for i := range vectors {
		row := make([]float32, manifest.Dimension)
		if err := binary.Read(reader, binary.LittleEndian, row); err != nil {
			return nil, domain.NewCorruptArchiveError("truncated vector data", err)
		}
		vectors[i] = row
	}

	return &Store{
		passages: passages,
		vectors:  vectors,
		dim:      manifest.Dimension,
		embedder: manifest.Embedder,
		minScore: manifest.MinScore,
	}, nil
}

func writeJSONEntry(zw *zip.Writer, name string, v interface{}) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(v)
}

func readEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, domain.NewCorruptArchiveError("failed to open archive entry "+name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, domain.NewCorruptArchiveError("failed to read archive entry "+name, err)
		}
		return data, nil
	}
	return nil, domain.NewCorruptArchiveError("archive entry "+name+" is missing", nil)
}

func readJSONEntry(zr *zip.Reader, name string, v interface{}) error {
	data, err := readEntry(zr, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return domain.NewCorruptArchiveError("archive entry "+name+" is malformed", err)
	}
	return nil
}
