// Package cbc provides the AES-256-CBC primitive with PKCS#7 padding shared by
// the envelope and content ciphers, in one-shot and streaming form.
package cbc

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"
)

const (
	// KeySize defines the AES-256 key size
	KeySize = 32
	// IVSize defines the CBC initialisation vector size (one AES block)
	IVSize = aes.BlockSize
	// BlockSize is the AES block size used for padding
	BlockSize = aes.BlockSize
)

var (
	// ErrInvalidPadding is returned when PKCS#7 padding does not verify after decryption.
	// With a wrong key this is the usual failure mode.
	ErrInvalidPadding = errors.New("invalid PKCS#7 padding")
	// ErrInvalidCiphertext is returned for ciphertext that is empty or not block aligned
	ErrInvalidCiphertext = errors.New("ciphertext is not a positive multiple of the block size")
)

// AESCBCCipher wraps AES-CBC operations for a fixed 256-bit key
type AESCBCCipher struct {
	block cipher.Block
}

// NewAESCBC creates a new AES-CBC cipher with the provided 256-bit key
func NewAESCBC(key []byte) (*AESCBCCipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key size: expected %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	return &AESCBCCipher{block: block}, nil
}

// Encrypt pads plaintext with PKCS#7 and encrypts it under iv
func (c *AESCBCCipher) Encrypt(plaintext, iv []byte) ([]byte, error) {
	if err := checkIV(iv); err != nil {
		return nil, err
	}

	padded := Pad(plaintext, BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out, padded)
	return out, nil
}

// Decrypt decrypts ciphertext under iv and strips the PKCS#7 padding
func (c *AESCBCCipher) Decrypt(ciphertext, iv []byte) ([]byte, error) {
	if err := checkIV(iv); err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%BlockSize != 0 {
		return nil, ErrInvalidCiphertext
	}

	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(out, ciphertext)
	return Unpad(out, BlockSize)
}

// NewEncryptWriter returns a writer that encrypts everything written to it into
// dst. Close flushes the final padded block; it does not close dst.
func (c *AESCBCCipher) NewEncryptWriter(dst io.Writer, iv []byte) (io.WriteCloser, error) {
	if err := checkIV(iv); err != nil {
		return nil, err
	}
	return &encryptWriter{dst: dst, mode: cipher.NewCBCEncrypter(c.block, iv)}, nil
}

// NewDecryptReader returns a reader yielding the plaintext of the ciphertext
// read from src. The padding is checked when src reaches EOF.
func (c *AESCBCCipher) NewDecryptReader(src io.Reader, iv []byte) (io.Reader, error) {
	if err := checkIV(iv); err != nil {
		return nil, err
	}
	return &decryptReader{src: src, mode: cipher.NewCBCDecrypter(c.block, iv)}, nil
}

// Pad appends PKCS#7 padding; a full block is added to aligned input
func Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

// Unpad removes PKCS#7 padding
func Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, ErrInvalidPadding
	}

	var diff byte
	for _, b := range data[len(data)-n:] {
		diff |= b ^ byte(n)
	}
	if diff != 0 {
		return nil, ErrInvalidPadding
	}

	return data[:len(data)-n], nil
}

func checkIV(iv []byte) error {
	if len(iv) != IVSize {
		return fmt.Errorf("invalid IV size: expected %d bytes, got %d", IVSize, len(iv))
	}
	return nil
}

type encryptWriter struct {
	dst    io.Writer
	mode   cipher.BlockMode
	buf    []byte
	closed bool
}

func (w *encryptWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("write to closed encrypt writer")
	}

	w.buf = append(w.buf, p...)
	full := len(w.buf) / BlockSize * BlockSize
	if full == 0 {
		return len(p), nil
	}

	out := make([]byte, full)
	w.mode.CryptBlocks(out, w.buf[:full])
	w.buf = append(w.buf[:0], w.buf[full:]...)
	if _, err := w.dst.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *encryptWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	padded := Pad(w.buf, BlockSize)
	out := make([]byte, len(padded))
	w.mode.CryptBlocks(out, padded)
	w.buf = nil
	_, err := w.dst.Write(out)
	return err
}

const readChunk = 32 * 1024

type decryptReader struct {
	src   io.Reader
	mode  cipher.BlockMode
	chunk []byte
	in    []byte
	out   []byte
	done  bool
	err   error
}

func (r *decryptReader) Read(p []byte) (int, error) {
	for len(r.out) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		if r.done {
			return 0, io.EOF
		}
		r.fill()
	}

	n := copy(p, r.out)
	r.out = r.out[n:]
	return n, nil
}

// fill decrypts every complete block except the last one, which is held back
// until EOF so its padding can be removed.
func (r *decryptReader) fill() {
	if r.chunk == nil {
		r.chunk = make([]byte, readChunk)
	}
	n, err := r.src.Read(r.chunk)
	r.in = append(r.in, r.chunk[:n]...)

	if errors.Is(err, io.EOF) {
		r.done = true
		if len(r.in) == 0 || len(r.in)%BlockSize != 0 {
			r.err = ErrInvalidCiphertext
			return
		}
		plain := make([]byte, len(r.in))
		r.mode.CryptBlocks(plain, r.in)
		r.in = nil
		r.out, r.err = Unpad(plain, BlockSize)
		return
	}
	if err != nil {
		r.err = err
		return
	}

	full := len(r.in) / BlockSize * BlockSize
	if full == len(r.in) {
		full -= BlockSize
	}
	if full <= 0 {
		return
	}

	plain := make([]byte, full)
	r.mode.CryptBlocks(plain, r.in[:full])
	r.in = append(r.in[:0], r.in[full:]...)
	r.out = plain
}
