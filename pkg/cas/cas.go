package cas

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/events"
	"github.com/fcdb-io/fcdb/pkg/fcdberr"
	"github.com/fcdb-io/fcdb/pkg/log"
	"github.com/fcdb-io/fcdb/pkg/security"
	"github.com/fcdb-io/fcdb/pkg/types"
	"golang.org/x/exp/mmap"
)

// PackSizeTarget is the size at which an open pack is sealed.
const PackSizeTarget = 256 * 1024 * 1024

// PackSizeMax is the hard cap enforced on top of PackSizeTarget.
const PackSizeMax = 512 * 1024 * 1024

const cidxFileName = "cidx.dat"

// packWriter is the single active writer for one Band.
type packWriter struct {
	mu     sync.Mutex
	packID uint32
	band   types.Band
	file   *os.File
	offset uint64
}

// PackCAS is the pack-file content-addressable store. Put/Get/Exists
// implement dedup-on-write, CIR-directed lookup, and a Bloom fast
// path; Bloom adaptation and pack rotation run underneath without the
// caller's involvement.
type PackCAS struct {
	baseDir        string
	verifyOnRead   bool
	packSizeTarget uint64

	cidxFile *os.File
	cidxMu   sync.Mutex

	indexMu sync.RWMutex
	index   map[digest.Digest]int64 // digest -> byte offset into cidx.dat

	bloom *bloomHierarchy

	writersMu sync.Mutex
	writers   map[types.Band]*packWriter
	nextPack  uint32

	readersMu sync.Mutex
	readers   map[uint32]*mmap.ReaderAt

	packsMu sync.Mutex
	packs   map[uint32]types.Pack

	catalog *catalog

	broker *events.Broker
	cipher *security.PayloadCipher
}

// SetBroker attaches the event broker pack lifecycle and Bloom
// redistribution are announced on. A nil broker (the default) makes
// publish a no-op.
func (c *PackCAS) SetBroker(b *events.Broker) {
	c.broker = b
}

func (c *PackCAS) publish(typ events.EventType, message string, meta map[string]string) {
	if c.broker == nil {
		return
	}
	c.broker.Publish(&events.Event{Type: typ, Message: message, Metadata: meta})
}

// Options configures an Open call.
type Options struct {
	VerifyOnRead bool

	// PackSizeTarget overrides PackSizeTarget for this store. Zero uses
	// the package default.
	PackSizeTarget uint64

	// GlobalFPRate, PackFPRate, ShardFPRate override the Bloom
	// hierarchy's per-level false-positive targets. Zero uses the
	// package default for that level.
	GlobalFPRate float64
	PackFPRate   float64
	ShardFPRate  float64

	// Cipher, if non-nil, encrypts every payload before it is written
	// to a pack and decrypts it on the way back out. Content identity
	// (the digest returned by Put, and every Bloom/CIR lookup) is
	// always computed over plaintext, so enabling or disabling
	// encryption does not change a payload's digest — only what is
	// physically stored on disk.
	Cipher *security.PayloadCipher
}

// Open opens or creates a PackCAS rooted at dataDir.
func Open(dataDir string, opts Options) (*PackCAS, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("cas: create data dir: %w", err)
	}

	cidxFile, err := os.OpenFile(filepath.Join(dataDir, cidxFileName), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cas: open cidx: %w", err)
	}

	cat, err := openCatalog(dataDir)
	if err != nil {
		cidxFile.Close()
		return nil, err
	}

	packSizeTarget := opts.PackSizeTarget
	if packSizeTarget == 0 {
		packSizeTarget = PackSizeTarget
	}

	c := &PackCAS{
		baseDir:        dataDir,
		verifyOnRead:   opts.VerifyOnRead,
		packSizeTarget: packSizeTarget,
		cidxFile:       cidxFile,
		index:          make(map[digest.Digest]int64),
		bloom:          newBloomHierarchyWithRates(opts.GlobalFPRate, opts.PackFPRate, opts.ShardFPRate),
		writers:        make(map[types.Band]*packWriter),
		readers:        make(map[uint32]*mmap.ReaderAt),
		packs:          make(map[uint32]types.Pack),
		catalog:        cat,
		cipher:         opts.Cipher,
	}

	if err := c.loadCatalog(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.loadCidx(); err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

// Close releases every open file handle, including memory-mapped pack
// readers and any open writer.
func (c *PackCAS) Close() error {
	c.writersMu.Lock()
	for _, w := range c.writers {
		w.file.Close()
	}
	c.writersMu.Unlock()

	c.readersMu.Lock()
	for _, r := range c.readers {
		r.Close()
	}
	c.readersMu.Unlock()

	var err error
	if c.cidxFile != nil {
		err = c.cidxFile.Close()
	}
	if c.catalog != nil {
		if cerr := c.catalog.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func (c *PackCAS) loadCatalog() error {
	packs, err := c.catalog.list()
	if err != nil {
		return fmt.Errorf("cas: load catalog: %w", err)
	}
	c.packsMu.Lock()
	defer c.packsMu.Unlock()
	for _, p := range packs {
		c.packs[p.ID] = p
		if p.ID >= c.nextPack {
			c.nextPack = p.ID + 1
		}
	}
	return nil
}

// loadCidx rebuilds the digest->offset index and every Bloom level by
// scanning cidx.dat once at open. Records with a bad CRC are skipped
// and logged as quarantined, treated as absent by readers.
func (c *PackCAS) loadCidx() error {
	info, err := c.cidxFile.Stat()
	if err != nil {
		return fmt.Errorf("cas: stat cidx: %w", err)
	}

	buf := make([]byte, recordSize)
	count := info.Size() / recordSize
	for i := int64(0); i < count; i++ {
		off := i * recordSize
		if _, err := c.cidxFile.ReadAt(buf, off); err != nil {
			return fmt.Errorf("cas: read cidx record %d: %w", i, err)
		}
		rec := decodeRecord(buf)
		if !verifyCRC(rec) {
			log.Logger.Warn().Int64("record", i).Msg("cidx record CRC mismatch, quarantined")
			continue
		}

		c.index[rec.Digest] = off
		typePart := uint16(rec.Kind) << 8
		c.bloom.insert(rec.Digest, rec.PackID, typePart, 0)
	}
	return nil
}

// Put stores data under kind/band and returns its digest. If the
// Bloom hierarchy already reports the digest as known, Put returns
// immediately without touching disk (content-addressed dedup). A
// write that would push the band's open pack past PackSizeMax rotates
// that pack and fails with KindCapacity instead of writing past the
// cap; the caller retries, landing on the freshly rotated writer. When
// a Cipher is configured, the bytes landing in the pack are
// ciphertext; the returned digest is always over the plaintext data
// passed in.
func (c *PackCAS) Put(data []byte, kind uint8, band types.Band) (digest.Digest, error) {
	d := digest.Sum(data)

	if c.bloom.globalContains(d) {
		if _, ok := c.lookupIndex(d); ok {
			return d, nil
		}
		c.bloom.recordFalsePositive("global")
	}

	stored := data
	if c.cipher != nil {
		enc, err := c.cipher.Encrypt(data)
		if err != nil {
			return digest.Zero, fmt.Errorf("cas: encrypt payload: %w", err)
		}
		stored = enc
	}

	w, err := c.writerFor(band)
	if err != nil {
		return digest.Zero, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.offset+uint64(len(stored)) > PackSizeMax {
		packID := w.packID
		if err := c.sealWriter(band, w); err != nil {
			return digest.Zero, err
		}
		c.publish(events.EventPackRotated, fmt.Sprintf("pack %d rotated at its size cap", packID),
			map[string]string{"pack_id": fmt.Sprint(packID)})
		return digest.Zero, fcdberr.New(fcdberr.KindCapacity, "cas.Put", fmt.Errorf("pack %d is at its size cap, rotated; retry", packID))
	}

	offset := w.offset
	if _, err := w.file.Write(stored); err != nil {
		return digest.Zero, fmt.Errorf("cas: write pack %d: %w", w.packID, err)
	}
	if err := w.file.Sync(); err != nil {
		return digest.Zero, fmt.Errorf("cas: fsync pack %d: %w", w.packID, err)
	}
	w.offset += uint64(len(stored))

	rec := newRecord(d, w.packID, offset, uint32(len(stored)), kind, 0)
	recOffset, err := c.appendCIR(rec)
	if err != nil {
		return digest.Zero, err
	}

	c.indexMu.Lock()
	c.index[d] = recOffset
	c.indexMu.Unlock()

	typePart := uint16(kind) << 8
	c.bloom.insert(d, w.packID, typePart, 0)

	c.touchPack(w.packID, band, uint64(len(stored)))

	if w.offset >= c.packSizeTarget {
		if err := c.sealWriter(band, w); err != nil {
			return d, err
		}
	}

	return d, nil
}

// Get retrieves the bytes named by d, or NotFound if they are not
// present. With a Cipher configured, the pack bytes are decrypted
// before anything else sees them. With VerifyOnRead enabled, the
// plaintext is then rehashed and compared to d before being handed
// back.
func (c *PackCAS) Get(d digest.Digest) ([]byte, error) {
	if !c.bloom.globalContains(d) {
		return nil, fcdberr.New(fcdberr.KindNotFound, "cas.Get", nil)
	}

	recOffset, ok := c.lookupIndex(d)
	if !ok {
		c.bloom.recordFalsePositive("global")
		return nil, fcdberr.New(fcdberr.KindNotFound, "cas.Get", nil)
	}

	buf := make([]byte, recordSize)
	if _, err := c.cidxFile.ReadAt(buf, recOffset); err != nil {
		return nil, fmt.Errorf("cas: read cidx record: %w", err)
	}
	rec := decodeRecord(buf)
	if !verifyCRC(rec) {
		return nil, fcdberr.New(fcdberr.KindIntegrity, "cas.Get", fmt.Errorf("cidx record for %s has a bad CRC", d))
	}

	reader, err := c.packReader(rec.PackID)
	if err != nil {
		return nil, err
	}

	data := make([]byte, rec.Length)
	if _, err := reader.ReadAt(data, int64(rec.Offset)); err != nil {
		return nil, fmt.Errorf("cas: read pack %d: %w", rec.PackID, err)
	}

	if c.cipher != nil {
		plain, err := c.cipher.Decrypt(data)
		if err != nil {
			return nil, fcdberr.New(fcdberr.KindIntegrity, "cas.Get", fmt.Errorf("decrypt pack %d: %w", rec.PackID, err))
		}
		data = plain
	}

	if c.verifyOnRead {
		if got := digest.Sum(data); got != d {
			return nil, fcdberr.New(fcdberr.KindIntegrity, "cas.Get",
				fmt.Errorf("digest mismatch on verify-on-read: want %s got %s", d, got))
		}
	}

	return data, nil
}

// Exists performs the Bloom-fast existence check followed by a CIR
// lookup, since a Bloom filter alone can false-positive and only the
// CIR lookup makes the result authoritative.
func (c *PackCAS) Exists(d digest.Digest) bool {
	if !c.bloom.globalContains(d) {
		return false
	}
	_, ok := c.lookupIndex(d)
	return ok
}

func (c *PackCAS) lookupIndex(d digest.Digest) (int64, bool) {
	c.indexMu.RLock()
	defer c.indexMu.RUnlock()
	off, ok := c.index[d]
	return off, ok
}

func (c *PackCAS) appendCIR(rec types.ContentIndexRecord) (int64, error) {
	c.cidxMu.Lock()
	defer c.cidxMu.Unlock()

	info, err := c.cidxFile.Stat()
	if err != nil {
		return 0, fmt.Errorf("cas: stat cidx: %w", err)
	}
	off := info.Size()

	buf := encodeRecord(rec)
	if _, err := c.cidxFile.WriteAt(buf[:], off); err != nil {
		return 0, fmt.Errorf("cas: append cidx record: %w", err)
	}
	if err := c.cidxFile.Sync(); err != nil {
		return 0, fmt.Errorf("cas: fsync cidx: %w", err)
	}
	return off, nil
}

func (c *PackCAS) writerFor(band types.Band) (*packWriter, error) {
	c.writersMu.Lock()
	defer c.writersMu.Unlock()

	if w, ok := c.writers[band]; ok {
		return w, nil
	}

	packID := c.nextPack
	c.nextPack++

	path := filepath.Join(c.baseDir, packFileName(packID))
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cas: open pack %d: %w", packID, err)
	}

	w := &packWriter{packID: packID, band: band, file: file}
	c.writers[band] = w

	c.touchPack(packID, band, 0)

	return w, nil
}

// sealWriter closes the current writer for band and clears its slot
// so the next Put opens a fresh pack. Caller must already hold w.mu.
func (c *PackCAS) sealWriter(band types.Band, w *packWriter) error {
	packLog := log.WithPackID(w.packID)

	if err := w.file.Close(); err != nil {
		return fmt.Errorf("cas: close pack %d: %w", w.packID, err)
	}

	c.packsMu.Lock()
	p := c.packs[w.packID]
	sealedAt := types.Now()
	p.SealedAt = &sealedAt
	c.packs[w.packID] = p
	c.packsMu.Unlock()

	if err := c.catalog.put(p); err != nil {
		packLog.Warn().Err(err).Msg("failed to persist sealed pack metadata")
	}

	c.writersMu.Lock()
	delete(c.writers, band)
	c.writersMu.Unlock()

	packLog.Info().Msg("sealed pack")
	c.publish(events.EventPackSealed, fmt.Sprintf("pack %d sealed", w.packID), map[string]string{"pack_id": fmt.Sprint(w.packID)})
	return nil
}

func (c *PackCAS) touchPack(packID uint32, band types.Band, addedBytes uint64) {
	c.packsMu.Lock()
	defer c.packsMu.Unlock()

	p, ok := c.packs[packID]
	if !ok {
		p = types.Pack{ID: packID, Band: band, CreatedAt: types.Now()}
	}
	p.Size += addedBytes
	if addedBytes > 0 {
		p.ObjectCount++
	}
	c.packs[packID] = p

	if err := c.catalog.put(p); err != nil {
		log.Logger.Warn().Err(err).Uint32("pack_id", packID).Msg("failed to persist pack metadata")
	}
}

// BandStats summarizes one band's pack footprint.
type BandStats struct {
	PackCount uint64
	Bytes     uint64
}

// Stats returns per-band pack counts and total bytes stored,
// snapshotted from the in-memory pack catalog.
func (c *PackCAS) Stats() map[types.Band]BandStats {
	c.packsMu.Lock()
	defer c.packsMu.Unlock()

	out := make(map[types.Band]BandStats)
	for _, p := range c.packs {
		s := out[p.Band]
		s.PackCount++
		s.Bytes += p.Size
		out[p.Band] = s
	}
	return out
}

func (c *PackCAS) packReader(packID uint32) (*mmap.ReaderAt, error) {
	c.readersMu.Lock()
	defer c.readersMu.Unlock()

	if r, ok := c.readers[packID]; ok {
		return r, nil
	}

	path := filepath.Join(c.baseDir, packFileName(packID))
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cas: mmap pack %d: %w", packID, err)
	}
	c.readers[packID] = r
	return r, nil
}

func packFileName(id uint32) string {
	return fmt.Sprintf("pack_%08d.dat", id)
}
