package crypto

import "crypto/cipher"

// cfb8 implements cipher.Stream for AES-128 in segmented CFB-8 feedback
// mode: the mode Minecraft Java Edition's protocol specifies (spec §4.A),
// which differs from the full-block CFB the standard library's
// crypto/cipher.NewCFBEncrypter/NewCFBDecrypter implement. No library in the
// example corpus provides CFB-8, so this is authored directly against the
// well-known construction: encrypt the shift register with the block
// cipher, XOR its leading byte into the input byte to produce the output
// byte, then shift the register left one byte and append the byte that
// feeds back into it (the ciphertext byte, for both directions).
type cfb8 struct {
	block     cipher.Block
	register  []byte
	blockSize int
	decrypt   bool
}

// NewCFB8Encrypter returns a cipher.Stream that encrypts with AES-128 CFB-8
// using iv as the initial shift register. iv must be block.BlockSize() bytes
// (16 for AES-128).
func NewCFB8Encrypter(block cipher.Block, iv []byte) cipher.Stream {
	return newCFB8(block, iv, false)
}

// NewCFB8Decrypter returns a cipher.Stream that decrypts with AES-128 CFB-8
// using iv as the initial shift register.
func NewCFB8Decrypter(block cipher.Block, iv []byte) cipher.Stream {
	return newCFB8(block, iv, true)
}

func newCFB8(block cipher.Block, iv []byte, decrypt bool) cipher.Stream {
	bs := block.BlockSize()
	if len(iv) != bs {
		panic("crypto/cfb8: IV length must equal block size")
	}
	register := make([]byte, bs)
	copy(register, iv)
	return &cfb8{block: block, register: register, blockSize: bs, decrypt: decrypt}
}

// XORKeyStream implements cipher.Stream, processing one byte at a time -
// CFB-8 has no larger natural unit.
func (c *cfb8) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("crypto/cfb8: output smaller than input")
	}

	scratch := make([]byte, c.blockSize)
	for i, in := range src {
		c.block.Encrypt(scratch, c.register)

		out := in ^ scratch[0]

		// Shift the register left one byte and append the byte that feeds
		// back: the ciphertext byte, regardless of direction.
		var feedback byte
		if c.decrypt {
			feedback = in
		} else {
			feedback = out
		}
		copy(c.register, c.register[1:])
		c.register[c.blockSize-1] = feedback

		dst[i] = out
	}
}
